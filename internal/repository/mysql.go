package repository

import (
	"context"
	"database/sql"

	"github.com/filmdb/contribution-service/internal/model"
)

// MySQLStore is the production Store implementation.  It composes the
// per-table repositories and maps the Tx interface onto a *sql.Tx so the
// service layer stays free of SQL concerns.
type MySQLStore struct {
	db            *sql.DB
	records       *FieldRecordRepo
	contributions *ContributionRepo
	movies        *MovieRepo
	users         *UserRepo
}

// NewMySQLStore builds a MySQLStore over an open database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:            db,
		records:       NewFieldRecordRepo(db),
		contributions: NewContributionRepo(db),
		movies:        NewMovieRepo(db),
		users:         NewUserRepo(db),
	}
}

// DB exposes the underlying handle for components that manage their own
// statements, such as the auth repositories.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// BeginTx opens a database transaction.
func (s *MySQLStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &mysqlTx{store: s, tx: tx}, nil
}

func (s *MySQLStore) AcceptedMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	return s.movies.GetAccepted(ctx, id)
}

func (s *MySQLStore) EnabledUser(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetEnabled(ctx, id)
}

func (s *MySQLStore) FieldRecord(ctx context.Context, id uint64) (*model.FieldRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *MySQLStore) AcceptedRecords(ctx context.Context, movieID uint64, kind model.FieldKind) ([]model.FieldRecord, error) {
	return s.records.ListAccepted(ctx, movieID, kind)
}

func (s *MySQLStore) ContributionByField(ctx context.Context, id uint64, kind model.FieldKind) (*model.Contribution, error) {
	return s.contributions.GetByIDAndField(ctx, id, kind)
}

func (s *MySQLStore) FindContributions(ctx context.Context, f ContributionFilter, page, perPage int) ([]ContributionSummary, int64, error) {
	return s.contributions.Find(ctx, f, page, perPage)
}

// mysqlTx adapts a *sql.Tx to the Tx interface.
type mysqlTx struct {
	store *MySQLStore
	tx    *sql.Tx
}

func (t *mysqlTx) Commit() error   { return t.tx.Commit() }
func (t *mysqlTx) Rollback() error { return t.tx.Rollback() }

func (t *mysqlTx) LockMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	return t.store.movies.LockAcceptedTx(ctx, t.tx, id)
}

func (t *mysqlTx) LockWaitingContribution(ctx context.Context, id uint64) (*model.Contribution, error) {
	return t.store.contributions.LockWaitingTx(ctx, t.tx, id)
}

func (t *mysqlTx) FieldRecord(ctx context.Context, id uint64) (*model.FieldRecord, error) {
	return t.store.records.GetByIDTx(ctx, t.tx, id)
}

func (t *mysqlTx) HasActiveDuplicate(ctx context.Context, movieID uint64, kind model.FieldKind, key string) (bool, error) {
	return t.store.records.HasActiveDuplicateTx(ctx, t.tx, movieID, kind, key)
}

func (t *mysqlTx) InsertFieldRecord(ctx context.Context, rec *model.FieldRecord) error {
	return t.store.records.InsertTx(ctx, t.tx, rec)
}

func (t *mysqlTx) UpdateFieldRecord(ctx context.Context, rec *model.FieldRecord) error {
	return t.store.records.UpdateTx(ctx, t.tx, rec)
}

func (t *mysqlTx) InsertContribution(ctx context.Context, c *model.Contribution) error {
	return t.store.contributions.InsertTx(ctx, t.tx, c)
}

func (t *mysqlTx) UpdateContribution(ctx context.Context, c *model.Contribution) error {
	return t.store.contributions.UpdateTx(ctx, t.tx, c)
}
