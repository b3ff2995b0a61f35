package repository

import (
	"context"
	"time"

	"github.com/filmdb/contribution-service/internal/model"
)

// Store is the persistence boundary of the contribution workflow.  The
// MySQL implementation backs the server; the in-memory implementation
// backs tests.  Read methods run outside any transaction; every mutating
// flow begins a Tx so that a create, update or verify call applies all of
// its item-level effects or none.
type Store interface {
	// BeginTx opens a transaction scoped to exactly one contribution and
	// its referenced field records.
	BeginTx(ctx context.Context) (Tx, error)

	// AcceptedMovie returns the movie when it exists with status ACCEPTED,
	// ErrNotFound otherwise.
	AcceptedMovie(ctx context.Context, id uint64) (*model.Movie, error)

	// EnabledUser returns the user when it exists and is enabled,
	// ErrNotFound otherwise.
	EnabledUser(ctx context.Context, id uint64) (*model.User, error)

	// FieldRecord returns one record by id, ErrNotFound when absent.
	FieldRecord(ctx context.Context, id uint64) (*model.FieldRecord, error)

	// AcceptedRecords lists a movie's ACCEPTED records of one kind,
	// ordered by id.
	AcceptedRecords(ctx context.Context, movieID uint64, kind model.FieldKind) ([]model.FieldRecord, error)

	// ContributionByField returns one ledger entry by id when its field
	// kind matches, ErrNotFound otherwise.
	ContributionByField(ctx context.Context, id uint64, kind model.FieldKind) (*model.Contribution, error)

	// FindContributions returns a page of ledger summaries matching the
	// filter plus the total match count.
	FindContributions(ctx context.Context, f ContributionFilter, page, perPage int) ([]ContributionSummary, int64, error)
}

// Tx is one atomic unit of contribution work.  Lock methods double as
// guarded lookups: in MySQL they select FOR UPDATE, which serializes
// concurrent submissions against one movie and concurrent resolution
// attempts against one contribution.
type Tx interface {
	Commit() error
	Rollback() error

	// LockMovie returns the movie with status ACCEPTED, holding a row lock
	// until the transaction ends.  ErrNotFound when absent or not accepted.
	LockMovie(ctx context.Context, id uint64) (*model.Movie, error)

	// LockWaitingContribution returns the contribution with status WAITING,
	// holding a row lock until the transaction ends.  Only WAITING entries
	// are selectable, so an already-resolved id yields ErrNotFound.  A
	// losing concurrent resolver observes the same error.
	LockWaitingContribution(ctx context.Context, id uint64) (*model.Contribution, error)

	// FieldRecord returns one record by id, ErrNotFound when absent.
	FieldRecord(ctx context.Context, id uint64) (*model.FieldRecord, error)

	// HasActiveDuplicate reports whether any ACCEPTED or WAITING record of
	// the movie and kind shares the duplicate key.
	HasActiveDuplicate(ctx context.Context, movieID uint64, kind model.FieldKind, key string) (bool, error)

	// InsertFieldRecord persists a new record and populates its ID.
	InsertFieldRecord(ctx context.Context, rec *model.FieldRecord) error

	// UpdateFieldRecord persists the record's payload, status and pending
	// change columns.
	UpdateFieldRecord(ctx context.Context, rec *model.FieldRecord) error

	// InsertContribution persists a new ledger entry and populates its ID.
	InsertContribution(ctx context.Context, c *model.Contribution) error

	// UpdateContribution persists the entry's id sets, sources, comment,
	// status and verification columns.
	UpdateContribution(ctx context.Context, c *model.Contribution) error
}

// ContributionFilter narrows FindContributions.  Zero values mean "any".
type ContributionFilter struct {
	MovieID  uint64
	Field    model.FieldKind
	Status   model.DataStatus
	FromDate time.Time
	ToDate   time.Time
}

// ContributionSummary is the projection returned by the paginated ledger
// search: enough to render a listing row without loading payloads.
type ContributionSummary struct {
	ID        uint64          `json:"id"`
	Field     model.FieldKind `json:"field"`
	CreatedAt time.Time       `json:"created_at"`
}
