package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/queue"
	"github.com/filmdb/contribution-service/internal/repository"
)

// VerificationService resolves pending contributions.  Resolution is a
// one-shot, permission-gated transition: the ledger entry moves from
// WAITING to ACCEPTED or REJECTED and the decision cascades to every
// record the entry references.
type VerificationService struct {
	store  repository.Store
	events EventPublisher
}

// NewVerificationService builds a VerificationService.  events may be nil
// when no broker is configured.
func NewVerificationService(store repository.Store, events EventPublisher) *VerificationService {
	if store == nil {
		panic("nil store passed to NewVerificationService")
	}
	return &VerificationService{store: store, events: events}
}

// Resolve applies an accept or reject decision to a pending contribution.
//
// The verifier must hold the permission matching the contribution's field
// kind (or the ALL wildcard); otherwise ErrForbidden and nothing changes.
// The entry is locked in WAITING state, so a second resolution, or the
// loser of a concurrent race, sees ErrNotFound.  On ACCEPT the new records
// become ACCEPTED, queued edits replace the live payloads, and queued
// deletes retire their records.  On REJECT the new records become REJECTED
// and queued changes are discarded, leaving the published data untouched.
func (s *VerificationService) Resolve(ctx context.Context, verifierID, contributionID uint64, decision model.VerificationDecision, comment string) error {
	verifier, err := s.store.EnabledUser(ctx, verifierID)
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
	if !verifier.Permissions.Allows(c.Field) {
		return fmt.Errorf("%w: missing %s permission", repository.ErrForbidden, c.Field.RequiredPermission())
	}

	switch decision {
	case model.DecisionAccept:
		err = s.accept(ctx, tx, c)
	case model.DecisionReject:
		err = s.reject(ctx, tx, c)
	default:
		return fmt.Errorf("%w: unknown decision %q", repository.ErrBadRequest, decision)
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if decision == model.DecisionAccept {
		c.Status = model.StatusAccepted
	} else {
		c.Status = model.StatusRejected
	}
	c.Verification = &model.Verification{
		Decision:   decision,
		Comment:    comment,
		VerifierID: verifier.ID,
		Date:       now,
	}
	if err := tx.UpdateContribution(ctx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.publishResolved(ctx, c, now)
	return nil
}

// accept cascades an ACCEPT decision to every referenced record.
func (s *VerificationService) accept(ctx context.Context, tx repository.Tx, c *model.Contribution) error {
	for _, id := range c.IDsToAdd {
		rec, err := tx.FieldRecord(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status == model.StatusWaiting {
			rec.Status = model.StatusAccepted
			if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
				return err
			}
		}
	}
	for _, id := range c.IDsToUpdate {
		rec, err := tx.FieldRecord(ctx, id)
		if err != nil {
			return err
		}
		// Edits to WAITING records landed in place at submission time, so
		// only queued edits carry a proposed payload to promote.
		if rec.Pending == model.PendingUpdate {
			rec.Payload = rec.Proposed
			rec.Pending = model.PendingNone
			rec.Proposed = nil
			if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
				return err
			}
		}
	}
	for _, id := range c.IDsToDelete {
		rec, err := tx.FieldRecord(ctx, id)
		if err != nil {
			return err
		}
		if rec.Pending == model.PendingDelete {
			rec.Status = model.StatusRejected
			rec.Pending = model.PendingNone
			rec.Proposed = nil
			if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// reject cascades a REJECT decision: new records are retired and queued
// changes are dropped without touching the live payloads.
func (s *VerificationService) reject(ctx context.Context, tx repository.Tx, c *model.Contribution) error {
	for _, id := range c.IDsToAdd {
		rec, err := tx.FieldRecord(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status == model.StatusWaiting {
			rec.Status = model.StatusRejected
			rec.Pending = model.PendingNone
			rec.Proposed = nil
			if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
				return err
			}
		}
	}
	for _, id := range append(append([]uint64{}, c.IDsToUpdate...), c.IDsToDelete...) {
		rec, err := tx.FieldRecord(ctx, id)
		if err != nil {
			return err
		}
		if rec.Pending != model.PendingNone {
			rec.Pending = model.PendingNone
			rec.Proposed = nil
			if err := tx.UpdateFieldRecord(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *VerificationService) publishResolved(ctx context.Context, c *model.Contribution, resolvedAt time.Time) {
	if s.events == nil {
		return
	}
	ev := queue.ContributionResolvedEvent{
		ContributionID: c.ID,
		MovieID:        c.MovieID,
		Field:          c.Field.String(),
		SubmitterID:    c.SubmitterID,
		VerifierID:     c.Verification.VerifierID,
		Decision:       string(c.Verification.Decision),
		Comment:        c.Verification.Comment,
		ResolvedAt:     resolvedAt.Format(time.RFC3339),
	}
	if err := s.events.ContributionResolved(ctx, ev); err != nil {
		log.Printf("contribution: publish resolved event failed: %v", err)
	}
}
