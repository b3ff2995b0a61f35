package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/filmdb/contribution-service/internal/model"
)

// ContributionRepo provides persistence for ledger entries.  The three id
// sets and the sources list are stored as JSON arrays; verification
// columns stay NULL until the entry is resolved.
type ContributionRepo struct {
	db *sql.DB
}

// NewContributionRepo returns a ContributionRepo bound to the given database.
func NewContributionRepo(db *sql.DB) *ContributionRepo { return &ContributionRepo{db: db} }

const contributionColumns = `id, movie_id, kind, submitter_id, ids_to_add, ids_to_update, ids_to_delete,
       sources, comment, status, verification_decision, verification_comment, verifier_id, verified_at, created_at`

func scanContribution(row interface{ Scan(...any) error }) (*model.Contribution, error) {
	var (
		c                  model.Contribution
		add, update, del   []byte
		sources            []byte
		decision, vComment sql.NullString
		verifierID         sql.NullInt64
		verifiedAt         sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.MovieID, &c.Field, &c.SubmitterID, &add, &update, &del,
		&sources, &c.Comment, &c.Status, &decision, &vComment, &verifierID, &verifiedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalIDs(add, &c.IDsToAdd); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(update, &c.IDsToUpdate); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(del, &c.IDsToDelete); err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &c.Sources); err != nil {
			return nil, err
		}
	}
	if decision.Valid {
		c.Verification = &model.Verification{
			Decision:   model.VerificationDecision(decision.String),
			Comment:    vComment.String,
			VerifierID: uint64(verifierID.Int64),
			Date:       verifiedAt.Time,
		}
	}
	return &c, nil
}

func unmarshalIDs(data []byte, dst *[]uint64) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func marshalIDs(ids []uint64) ([]byte, error) {
	if ids == nil {
		ids = []uint64{}
	}
	return json.Marshal(ids)
}

// GetByIDAndField returns one entry by id when its field kind matches.
func (r *ContributionRepo) GetByIDAndField(ctx context.Context, id uint64, kind model.FieldKind) (*model.Contribution, error) {
	const q = `SELECT ` + contributionColumns + ` FROM contributions WHERE id = ? AND kind = ?`
	c, err := scanContribution(r.db.QueryRowContext(ctx, q, id, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// LockWaitingTx returns the WAITING entry with a row lock held for the
// duration of the transaction.  A resolved or missing entry yields
// ErrNotFound, which also serializes concurrent resolution attempts: the
// loser blocks on the lock and then no longer sees a WAITING row.
func (r *ContributionRepo) LockWaitingTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Contribution, error) {
	const q = `SELECT ` + contributionColumns + ` FROM contributions
               WHERE id = ? AND status = ? FOR UPDATE`
	c, err := scanContribution(tx.QueryRowContext(ctx, q, id, model.StatusWaiting))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// InsertTx persists a new entry within the transaction and populates the
// generated ID.
func (r *ContributionRepo) InsertTx(ctx context.Context, tx *sql.Tx, c *model.Contribution) error {
	add, err := marshalIDs(c.IDsToAdd)
	if err != nil {
		return err
	}
	update, err := marshalIDs(c.IDsToUpdate)
	if err != nil {
		return err
	}
	del, err := marshalIDs(c.IDsToDelete)
	if err != nil {
		return err
	}
	sources, err := json.Marshal(c.Sources)
	if err != nil {
		return err
	}
	const q = `INSERT INTO contributions
               (movie_id, kind, submitter_id, ids_to_add, ids_to_update, ids_to_delete, sources, comment, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		c.MovieID, c.Field, c.SubmitterID, add, update, del, sources, c.Comment, c.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// UpdateTx persists the entry's id sets, sources, comment, status and
// verification columns within the transaction.
func (r *ContributionRepo) UpdateTx(ctx context.Context, tx *sql.Tx, c *model.Contribution) error {
	add, err := marshalIDs(c.IDsToAdd)
	if err != nil {
		return err
	}
	update, err := marshalIDs(c.IDsToUpdate)
	if err != nil {
		return err
	}
	del, err := marshalIDs(c.IDsToDelete)
	if err != nil {
		return err
	}
	sources, err := json.Marshal(c.Sources)
	if err != nil {
		return err
	}
	var (
		decision, vComment sql.NullString
		verifierID         sql.NullInt64
		verifiedAt         sql.NullTime
	)
	if v := c.Verification; v != nil {
		decision = sql.NullString{String: string(v.Decision), Valid: true}
		vComment = sql.NullString{String: v.Comment, Valid: true}
		verifierID = sql.NullInt64{Int64: int64(v.VerifierID), Valid: true}
		verifiedAt = sql.NullTime{Time: v.Date, Valid: true}
	}
	const q = `UPDATE contributions
               SET ids_to_add = ?, ids_to_update = ?, ids_to_delete = ?, sources = ?, comment = ?,
                   status = ?, verification_decision = ?, verification_comment = ?, verifier_id = ?, verified_at = ?
               WHERE id = ?`
	_, err = tx.ExecContext(ctx, q,
		add, update, del, sources, c.Comment,
		c.Status, decision, vComment, verifierID, verifiedAt, c.ID)
	return err
}

// Find returns a page of ledger summaries matching the filter plus the
// total match count.  Results are ordered newest first.
func (r *ContributionRepo) Find(ctx context.Context, f ContributionFilter, page, perPage int) ([]ContributionSummary, int64, error) {
	where := " WHERE 1=1"
	args := make([]any, 0, 6)
	if f.MovieID != 0 {
		where += " AND movie_id = ?"
		args = append(args, f.MovieID)
	}
	if f.Field != "" {
		where += " AND kind = ?"
		args = append(args, f.Field)
	}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}
	if !f.FromDate.IsZero() {
		where += " AND created_at >= ?"
		args = append(args, f.FromDate)
	}
	if !f.ToDate.IsZero() {
		where += " AND created_at <= ?"
		args = append(args, f.ToDate)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contributions"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	summaries := make([]ContributionSummary, 0)
	if total == 0 {
		return summaries, 0, nil
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPageSize
	}
	q := "SELECT id, kind, created_at FROM contributions" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s       ContributionSummary
			created time.Time
		)
		if err := rows.Scan(&s.ID, &s.Field, &created); err != nil {
			return nil, 0, err
		}
		s.CreatedAt = created.UTC()
		summaries = append(summaries, s)
	}
	return summaries, total, rows.Err()
}

const defaultPageSize = 20
