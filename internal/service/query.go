package service

import (
	"context"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/repository"
)

// PayloadChange pairs the live payload of a record with the edit queued
// against it.  Proposed is nil for records that only appear in the add or
// delete sets.
type PayloadChange struct {
	Current  model.Payload `json:"current"`
	Proposed model.Payload `json:"proposed,omitempty"`
}

// ContributionDetail is the display projection of one ledger entry: the
// entry itself plus the payloads of every record it references, grouped by
// operation.
type ContributionDetail struct {
	Contribution *model.Contribution      `json:"contribution"`
	Added        map[uint64]model.Payload `json:"added"`
	Updated      map[uint64]PayloadChange `json:"updated"`
	Deleted      map[uint64]model.Payload `json:"deleted"`
}

// ContributionPage is one page of search results plus the total match
// count across all pages.
type ContributionPage struct {
	Items []repository.ContributionSummary `json:"items"`
	Total int64                            `json:"total"`
	Page  int                              `json:"page"`
}

// QueryService serves the read side: record listings, contribution detail
// and the contribution search.
type QueryService struct {
	store repository.Store
}

func NewQueryService(store repository.Store) *QueryService {
	if store == nil {
		panic("nil store passed to NewQueryService")
	}
	return &QueryService{store: store}
}

// AcceptedRecords returns the published records of one field kind for an
// ACCEPTED movie, oldest first.  A missing or unpublished movie yields
// ErrNotFound.
func (s *QueryService) AcceptedRecords(ctx context.Context, movieID uint64, kind model.FieldKind) ([]model.FieldRecord, error) {
	if _, err := s.store.AcceptedMovie(ctx, movieID); err != nil {
		return nil, err
	}
	return s.store.AcceptedRecords(ctx, movieID, kind)
}

// Contribution loads one ledger entry by kind and id together with the
// payloads of every record it references.  A kind mismatch is
// indistinguishable from a missing entry.
func (s *QueryService) Contribution(ctx context.Context, kind model.FieldKind, id uint64) (*ContributionDetail, error) {
	c, err := s.store.ContributionByField(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	detail := &ContributionDetail{
		Contribution: c,
		Added:        make(map[uint64]model.Payload, len(c.IDsToAdd)),
		Updated:      make(map[uint64]PayloadChange, len(c.IDsToUpdate)),
		Deleted:      make(map[uint64]model.Payload, len(c.IDsToDelete)),
	}
	for _, recID := range c.IDsToAdd {
		rec, err := s.store.FieldRecord(ctx, recID)
		if err != nil {
			return nil, err
		}
		detail.Added[recID] = rec.Payload
	}
	for _, recID := range c.IDsToUpdate {
		rec, err := s.store.FieldRecord(ctx, recID)
		if err != nil {
			return nil, err
		}
		detail.Updated[recID] = PayloadChange{Current: rec.Payload, Proposed: rec.Proposed}
	}
	for _, recID := range c.IDsToDelete {
		rec, err := s.store.FieldRecord(ctx, recID)
		if err != nil {
			return nil, err
		}
		detail.Deleted[recID] = rec.Payload
	}
	return detail, nil
}

// Find searches the contribution ledger with optional movie, field, status
// and submission-date filters, newest first.
func (s *QueryService) Find(ctx context.Context, f repository.ContributionFilter, page, perPage int) (*ContributionPage, error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.store.FindContributions(ctx, f, page, perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.ContributionSummary{}
	}
	return &ContributionPage{Items: items, Total: total, Page: page}, nil
}
