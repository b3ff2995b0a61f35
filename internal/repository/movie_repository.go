package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/filmdb/contribution-service/internal/model"
)

// MovieRepo provides read access to the movies table.  Movies are created
// and curated elsewhere; the contribution flow only needs to look one up
// and, during submission, lock it so duplicate checks and inserts against
// the same movie serialize.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, status, created_at`

// GetAccepted returns the movie when it exists with status ACCEPTED.
func (r *MovieRepo) GetAccepted(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ? AND status = ?`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, id, model.StatusAccepted).
		Scan(&m.ID, &m.Title, &m.Status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LockAcceptedTx returns the ACCEPTED movie with its row locked for the
// duration of the transaction.  The lock makes the duplicate-key
// check-then-insert atomic per movie: a concurrent submission against the
// same movie blocks here until the first transaction commits.
func (r *MovieRepo) LockAcceptedTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ? AND status = ? FOR UPDATE`
	var m model.Movie
	err := tx.QueryRowContext(ctx, q, id, model.StatusAccepted).
		Scan(&m.ID, &m.Title, &m.Status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
