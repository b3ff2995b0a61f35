// Package service implements the contribution workflow: submitting batched
// field proposals, amending a still-pending submission, resolving a
// contribution with an accept/reject decision, and the read-only
// projections used for display.  Every mutating call runs inside a single
// store transaction so its item-level effects apply all together or not at
// all.
package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/queue"
	"github.com/filmdb/contribution-service/internal/repository"
)

// EventPublisher emits workflow events to the message broker.  Publishing
// is best-effort: failures are logged and never fail the request that
// triggered them.
type EventPublisher interface {
	ContributionSubmitted(ctx context.Context, ev queue.ContributionSubmittedEvent) error
	ContributionResolved(ctx context.Context, ev queue.ContributionResolvedEvent) error
}

// ContributionRequest carries the batched operations of one submission or
// amendment.  All payloads must be of the contribution's field kind.
type ContributionRequest struct {
	ToAdd    []model.Payload
	ToUpdate map[uint64]model.Payload
	ToDelete []uint64
	Sources  []string
	Comment  string
}

func (r *ContributionRequest) empty() bool {
	return len(r.ToAdd) == 0 && len(r.ToUpdate) == 0 && len(r.ToDelete) == 0
}

// sortedUpdateIDs returns the update target ids in ascending order so the
// apply loop is deterministic.
func (r *ContributionRequest) sortedUpdateIDs() []uint64 {
	ids := make([]uint64, 0, len(r.ToUpdate))
	for id := range r.ToUpdate {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// validate checks that the request has work to do, that every payload is of
// the expected kind and internally valid, and that no record is targeted by
// both an update and a delete.
func (r *ContributionRequest) validate(kind model.FieldKind) error {
	if r.empty() {
		return fmt.Errorf("%w: contribution has no add, update or delete items", repository.ErrBadRequest)
	}
	for _, p := range r.ToAdd {
		if p.Kind() != kind {
			return fmt.Errorf("%w: payload kind %s does not match %s", repository.ErrBadRequest, p.Kind(), kind)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrBadRequest, err)
		}
	}
	for _, id := range r.sortedUpdateIDs() {
		p := r.ToUpdate[id]
		if p.Kind() != kind {
			return fmt.Errorf("%w: payload kind %s does not match %s", repository.ErrBadRequest, p.Kind(), kind)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrBadRequest, err)
		}
	}
	for _, id := range r.ToDelete {
		if _, ok := r.ToUpdate[id]; ok {
			return fmt.Errorf("%w: record %d targeted by both update and delete", repository.ErrConflict, id)
		}
	}
	return nil
}

// ContributionService is the engine behind submitting and amending
// contributions.  The acting user is an explicit parameter on every call;
// there is no ambient identity.
type ContributionService struct {
	store  repository.Store
	events EventPublisher
}

// NewContributionService builds a ContributionService.  events may be nil
// when no broker is configured.
func NewContributionService(store repository.Store, events EventPublisher) *ContributionService {
	if store == nil {
		panic("nil store passed to NewContributionService")
	}
	return &ContributionService{store: store, events: events}
}

// Create submits a new contribution of the given kind against an ACCEPTED
// movie and returns the new ledger entry's id.
//
// New payloads are checked against the movie's ACCEPTED and WAITING
// records of the same kind: a shared duplicate-key fails with ErrConflict.
// Update targets that are the actor's own WAITING records are edited in
// place; ACCEPTED targets get the edit queued as a pending change.  Delete
// targets are queued the same way.  Everything happens inside one
// transaction while holding the movie row lock, so two concurrent
// submissions of the same value cannot both pass the duplicate check.
func (s *ContributionService) Create(ctx context.Context, actorID, movieID uint64, kind model.FieldKind, req ContributionRequest) (uint64, error) {
	if err := req.validate(kind); err != nil {
		return 0, err
	}
	actor, err := s.store.EnabledUser(ctx, actorID)
	if err != nil {
		return 0, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	movie, err := tx.LockMovie(ctx, movieID)
	if err != nil {
		return 0, err
	}

	c := &model.Contribution{
		MovieID:     movie.ID,
		Field:       kind,
		SubmitterID: actor.ID,
		Sources:     req.Sources,
		Comment:     req.Comment,
		Status:      model.StatusWaiting,
	}

	if err := s.applyItems(ctx, tx, actor, movie, kind, c, req); err != nil {
		return 0, err
	}

	if err := tx.InsertContribution(ctx, c); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	s.publishSubmitted(ctx, c)
	return c.ID, nil
}

// Update amends a still-pending contribution owned by the acting user.  It
// applies the same per-item rules as Create but extends the existing
// ledger entry's id sets instead of creating a new entry.  A contribution
// that is missing, resolved, owned by someone else or of a different kind
// yields ErrNotFound.
func (s *ContributionService) Update(ctx context.Context, actorID, contributionID uint64, kind model.FieldKind, req ContributionRequest) error {
	if err := req.validate(kind); err != nil {
		return err
	}
	actor, err := s.store.EnabledUser(ctx, actorID)
	if err != nil {
		return err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	c, err := tx.LockWaitingContribution(ctx, contributionID)
	if err != nil {
		return err
	}
	if c.SubmitterID != actor.ID || c.Field != kind {
		return repository.ErrNotFound
	}
	movie, err := tx.LockMovie(ctx, c.MovieID)
	if err != nil {
		return err
	}

	if err := s.applyItems(ctx, tx, actor, movie, kind, c, req); err != nil {
		return err
	}

	if len(req.Sources) > 0 {
		c.Sources = req.Sources
	}
	if req.Comment != "" {
		c.Comment = req.Comment
	}
	if err := tx.UpdateContribution(ctx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// applyItems runs the per-item rules of a submission or amendment against
// the open transaction, mutating the ledger entry's id sets as it goes.
func (s *ContributionService) applyItems(ctx context.Context, tx repository.Tx, actor *model.User, movie *model.Movie, kind model.FieldKind, c *model.Contribution, req ContributionRequest) error {
	// Adds: duplicate-check against active records and against earlier
	// payloads of the same batch, then insert as WAITING.
	seen := make(map[string]struct{}, len(req.ToAdd))
	for _, p := range req.ToAdd {
		key := p.DuplicateKey()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate %s payload within the batch", repository.ErrConflict, kind)
		}
		seen[key] = struct{}{}
		exists, err := tx.HasActiveDuplicate(ctx, movie.ID, kind, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: an equal %s value is already accepted or pending for this movie", repository.ErrConflict, kind)
		}
		rec := &model.FieldRecord{
			MovieID:     movie.ID,
			SubmitterID: actor.ID,
			Kind:        kind,
			Status:      model.StatusWaiting,
			Payload:     p,
			Pending:     model.PendingNone,
		}
		if err := tx.InsertFieldRecord(ctx, rec); err != nil {
			return err
		}
		c.IDsToAdd = append(c.IDsToAdd, rec.ID)
	}

	// Updates: edit own pending records in place, queue edits against
	// published records.
	for _, id := range req.sortedUpdateIDs() {
		if err := s.applyUpdate(ctx, tx, actor, movie, kind, c, id, req.ToUpdate[id]); err != nil {
			return err
		}
	}

	// Deletes: withdraw own pending records, queue deletes against
	// published records.
	for _, id := range req.ToDelete {
		if err := s.applyDelete(ctx, tx, actor, movie, kind, c, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContributionService) loadTarget(ctx context.Context, tx repository.Tx, movie *model.Movie, kind model.FieldKind, id uint64) (*model.FieldRecord, error) {
	rec, err := tx.FieldRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.MovieID != movie.ID || rec.Kind != kind {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (s *ContributionService) applyUpdate(ctx context.Context, tx repository.Tx, actor *model.User, movie *model.Movie, kind model.FieldKind, c *model.Contribution, id uint64, p model.Payload) error {
	rec, err := s.loadTarget(ctx, tx, movie, kind, id)
	if err != nil {
		return err
	}

	switch {
	case containsID(c.IDsToUpdate, id) && rec.Pending == model.PendingUpdate:
		// Amending an edit this contribution already queued: refresh the
		// proposed payload, leave the live one alone.
		rec.Proposed = p
	case rec.Status == model.StatusWaiting:
		// A still-pending record can only be edited by its submitter, and
		// the edit lands directly on the live payload.
		if rec.SubmitterID != actor.ID {
			return repository.ErrNotFound
		}
		rec.Payload = p
	case rec.Status == model.StatusAccepted:
		if rec.Pending != model.PendingNone {
			return fmt.Errorf("%w: record %d already has a pending change", repository.ErrConflict, id)
		}
		rec.Pending = model.PendingUpdate
		rec.Proposed = p
	default:
		// REJECTED records are gone from the active set.
		return repository.ErrNotFound
	}

	if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
		return err
	}
	if !containsID(c.IDsToUpdate, id) {
		c.IDsToUpdate = append(c.IDsToUpdate, id)
	}
	return nil
}

func (s *ContributionService) applyDelete(ctx context.Context, tx repository.Tx, actor *model.User, movie *model.Movie, kind model.FieldKind, c *model.Contribution, id uint64) error {
	if containsID(c.IDsToDelete, id) {
		// Already queued by this contribution.
		return nil
	}
	rec, err := s.loadTarget(ctx, tx, movie, kind, id)
	if err != nil {
		return err
	}

	switch {
	case rec.Status == model.StatusWaiting:
		// Withdrawing one's own pending record.
		if rec.SubmitterID != actor.ID {
			return repository.ErrNotFound
		}
		rec.Pending = model.PendingDelete
	case rec.Status == model.StatusAccepted:
		if rec.Pending != model.PendingNone {
			return fmt.Errorf("%w: record %d already has a pending change", repository.ErrConflict, id)
		}
		rec.Pending = model.PendingDelete
	default:
		return repository.ErrNotFound
	}

	if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
		return err
	}
	c.IDsToDelete = append(c.IDsToDelete, id)
	return nil
}

func (s *ContributionService) publishSubmitted(ctx context.Context, c *model.Contribution) {
	if s.events == nil {
		return
	}
	ev := queue.ContributionSubmittedEvent{
		ContributionID: c.ID,
		MovieID:        c.MovieID,
		Field:          c.Field.String(),
		SubmitterID:    c.SubmitterID,
		Added:          len(c.IDsToAdd),
		Updated:        len(c.IDsToUpdate),
		Deleted:        len(c.IDsToDelete),
		SubmittedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.ContributionSubmitted(ctx, ev); err != nil {
		log.Printf("contribution: publish submitted event failed: %v", err)
	}
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
