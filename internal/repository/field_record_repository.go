package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/filmdb/contribution-service/internal/model"
)

// FieldRecordRepo provides persistence for field records.  One row stores
// the shared envelope plus the kind-specific payload as JSON; the kind
// column is the discriminator used when decoding.  The dup_key column
// holds a SHA-256 digest of the payload's duplicate key so that arbitrary
// length keys (synopses run to tens of kilobytes) stay indexable.
type FieldRecordRepo struct {
	db *sql.DB
}

// NewFieldRecordRepo returns a FieldRecordRepo bound to the given database.
func NewFieldRecordRepo(db *sql.DB) *FieldRecordRepo { return &FieldRecordRepo{db: db} }

// DuplicateKeyDigest hashes a payload duplicate key into the fixed-width
// form stored in the dup_key column.
func DuplicateKeyDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

const fieldRecordColumns = `id, movie_id, submitter_id, kind, status, payload, pending_change, proposed_payload, created_at, updated_at`

// scanFieldRecord reads one row into a model.FieldRecord, decoding the
// payload columns through the kind discriminator.
func scanFieldRecord(row interface{ Scan(...any) error }) (*model.FieldRecord, error) {
	var (
		rec      model.FieldRecord
		payload  []byte
		proposed []byte
	)
	err := row.Scan(
		&rec.ID, &rec.MovieID, &rec.SubmitterID, &rec.Kind, &rec.Status,
		&payload, &rec.Pending, &proposed, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rec.Payload, err = model.DecodePayload(rec.Kind, payload); err != nil {
		return nil, err
	}
	if len(proposed) > 0 {
		if rec.Proposed, err = model.DecodePayload(rec.Kind, proposed); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

// GetByID returns one record outside a transaction.
func (r *FieldRecordRepo) GetByID(ctx context.Context, id uint64) (*model.FieldRecord, error) {
	const q = `SELECT ` + fieldRecordColumns + ` FROM field_records WHERE id = ?`
	rec, err := scanFieldRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// GetByIDTx returns one record within the transaction.
func (r *FieldRecordRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.FieldRecord, error) {
	const q = `SELECT ` + fieldRecordColumns + ` FROM field_records WHERE id = ?`
	rec, err := scanFieldRecord(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListAccepted returns a movie's ACCEPTED records of one kind ordered by id.
func (r *FieldRecordRepo) ListAccepted(ctx context.Context, movieID uint64, kind model.FieldKind) ([]model.FieldRecord, error) {
	const q = `SELECT ` + fieldRecordColumns + `
               FROM field_records
               WHERE movie_id = ? AND kind = ? AND status = ?
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, movieID, kind, model.StatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]model.FieldRecord, 0)
	for rows.Next() {
		rec, err := scanFieldRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// HasActiveDuplicateTx reports whether an ACCEPTED or WAITING record of the
// movie and kind already stores the duplicate key.  Callers must hold the
// movie row lock so that two concurrent submissions cannot both pass this
// check and both insert.
func (r *FieldRecordRepo) HasActiveDuplicateTx(ctx context.Context, tx *sql.Tx, movieID uint64, kind model.FieldKind, key string) (bool, error) {
	const q = `SELECT EXISTS(
                   SELECT 1 FROM field_records
                   WHERE movie_id = ? AND kind = ? AND dup_key = ? AND status IN (?, ?)
               )`
	var exists bool
	err := tx.QueryRowContext(ctx, q, movieID, kind, DuplicateKeyDigest(key),
		model.StatusAccepted, model.StatusWaiting).Scan(&exists)
	return exists, err
}

// InsertTx persists a new record within the transaction and populates the
// generated ID.
func (r *FieldRecordRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.FieldRecord) error {
	payload, err := model.EncodePayload(rec.Payload)
	if err != nil {
		return err
	}
	const q = `INSERT INTO field_records
               (movie_id, submitter_id, kind, status, payload, dup_key, pending_change)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		rec.MovieID, rec.SubmitterID, rec.Kind, rec.Status,
		payload, DuplicateKeyDigest(rec.Payload.DuplicateKey()), rec.Pending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// UpdateTx persists the record's payload, status and pending change within
// the transaction.  The dup_key column is recomputed from the live payload
// so in-place edits keep conflict detection accurate.
func (r *FieldRecordRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rec *model.FieldRecord) error {
	payload, err := model.EncodePayload(rec.Payload)
	if err != nil {
		return err
	}
	var proposed []byte
	if rec.Proposed != nil {
		if proposed, err = model.EncodePayload(rec.Proposed); err != nil {
			return err
		}
	}
	const q = `UPDATE field_records
               SET status = ?, payload = ?, dup_key = ?, pending_change = ?, proposed_payload = ?
               WHERE id = ?`
	_, err = tx.ExecContext(ctx, q,
		rec.Status, payload, DuplicateKeyDigest(rec.Payload.DuplicateKey()),
		rec.Pending, proposed, rec.ID)
	return err
}
