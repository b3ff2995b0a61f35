package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmdb/contribution-service/internal/model"
	"github.com/filmdb/contribution-service/internal/repository"
)

func TestResolveAcceptPublishesAddedRecords(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldOtherTitle,
		addRequest(model.OtherTitle{Title: "Film1", Country: "POLAND"}))
	require.NoError(t, err)

	before := time.Now().UTC()
	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionAccept, "looks right"))

	c := mustContribution(t, store, id, model.FieldOtherTitle)
	assert.Equal(t, model.StatusAccepted, c.Status)
	require.NotNil(t, c.Verification)
	assert.Equal(t, model.DecisionAccept, c.Verification.Decision)
	assert.Equal(t, "looks right", c.Verification.Comment)
	assert.Equal(t, verifierAllID, c.Verification.VerifierID)
	assert.False(t, c.Verification.Date.Before(before))

	rec := mustRecord(t, store, c.IDsToAdd[0])
	assert.Equal(t, model.StatusAccepted, rec.Status)

	accepted, err := store.AcceptedRecords(ctx, testMovieID, model.FieldOtherTitle)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, model.OtherTitle{Title: "Film1", Country: "POLAND"}, accepted[0].Payload)
}

func TestResolveRejectRetiresAddedRecords(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre,
		addRequest(model.Genre{Genre: "DRAMA"}))
	require.NoError(t, err)

	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionReject, "unsourced"))

	c := mustContribution(t, store, id, model.FieldGenre)
	assert.Equal(t, model.StatusRejected, c.Status)
	rec := mustRecord(t, store, c.IDsToAdd[0])
	assert.Equal(t, model.StatusRejected, rec.Status)

	// The rejected value's slot is free again.
	_, err = contribs.Create(ctx, otherUserID, testMovieID, model.FieldGenre,
		addRequest(model.Genre{Genre: "DRAMA"}))
	assert.NoError(t, err)
}

func TestResolveAcceptAppliesQueuedEdit(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	recID := store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: otherUserID, Kind: model.FieldSummary,
		Status: model.StatusAccepted, Payload: model.Summary{Text: "Old."},
	})
	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldSummary, ContributionRequest{
		ToUpdate: map[uint64]model.Payload{recID: model.Summary{Text: "New."}},
	})
	require.NoError(t, err)

	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionAccept, ""))

	rec := mustRecord(t, store, recID)
	assert.Equal(t, model.StatusAccepted, rec.Status)
	assert.Equal(t, model.Summary{Text: "New."}, rec.Payload)
	assert.Equal(t, model.PendingNone, rec.Pending)
	assert.Nil(t, rec.Proposed)
}

func TestResolveRejectDiscardsQueuedEdit(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	recID := store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: otherUserID, Kind: model.FieldSummary,
		Status: model.StatusAccepted, Payload: model.Summary{Text: "Old."},
	})
	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldSummary, ContributionRequest{
		ToUpdate: map[uint64]model.Payload{recID: model.Summary{Text: "New."}},
	})
	require.NoError(t, err)

	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionReject, ""))

	rec := mustRecord(t, store, recID)
	assert.Equal(t, model.StatusAccepted, rec.Status)
	assert.Equal(t, model.Summary{Text: "Old."}, rec.Payload, "live payload untouched")
	assert.Equal(t, model.PendingNone, rec.Pending)
	assert.Nil(t, rec.Proposed)

	// The record can take a fresh pending change now.
	_, err = contribs.Create(ctx, submitterID, testMovieID, model.FieldSummary, ContributionRequest{
		ToUpdate: map[uint64]model.Payload{recID: model.Summary{Text: "Third."}},
	})
	assert.NoError(t, err)
}

func TestResolveAcceptAppliesQueuedDelete(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	recID := store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: otherUserID, Kind: model.FieldGenre,
		Status: model.StatusAccepted, Payload: model.Genre{Genre: "DRAMA"},
	})
	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre, ContributionRequest{
		ToDelete: []uint64{recID},
	})
	require.NoError(t, err)

	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionAccept, ""))

	rec := mustRecord(t, store, recID)
	assert.Equal(t, model.StatusRejected, rec.Status)
	assert.Equal(t, model.PendingNone, rec.Pending)

	accepted, err := store.AcceptedRecords(ctx, testMovieID, model.FieldGenre)
	require.NoError(t, err)
	assert.Empty(t, accepted)
}

func TestResolveRejectKeepsDeleteTarget(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	recID := store.SeedRecord(model.FieldRecord{
		MovieID: testMovieID, SubmitterID: otherUserID, Kind: model.FieldGenre,
		Status: model.StatusAccepted, Payload: model.Genre{Genre: "DRAMA"},
	})
	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre, ContributionRequest{
		ToDelete: []uint64{recID},
	})
	require.NoError(t, err)

	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionReject, ""))

	rec := mustRecord(t, store, recID)
	assert.Equal(t, model.StatusAccepted, rec.Status)
	assert.Equal(t, model.PendingNone, rec.Pending)
}

func TestResolveAcceptWithdrawal(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	first, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre,
		addRequest(model.Genre{Genre: "DRAMA"}))
	require.NoError(t, err)
	recID := mustContribution(t, store, first, model.FieldGenre).IDsToAdd[0]

	second, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre, ContributionRequest{
		ToDelete: []uint64{recID},
	})
	require.NoError(t, err)

	// Accepting the withdrawal retires the still-WAITING record.
	require.NoError(t, verify.Resolve(ctx, verifierAllID, second, model.DecisionAccept, ""))
	rec := mustRecord(t, store, recID)
	assert.Equal(t, model.StatusRejected, rec.Status)
	assert.Equal(t, model.PendingNone, rec.Pending)
}

func TestResolvePermissionGate(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre,
		addRequest(model.Genre{Genre: "DRAMA"}))
	require.NoError(t, err)

	// verifierTitleID only holds the OTHER_TITLE permission.
	err = verify.Resolve(ctx, verifierTitleID, id, model.DecisionAccept, "")
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// Nothing changed.
	c := mustContribution(t, store, id, model.FieldGenre)
	assert.Equal(t, model.StatusWaiting, c.Status)
	assert.Nil(t, c.Verification)
	assert.Equal(t, model.StatusWaiting, mustRecord(t, store, c.IDsToAdd[0]).Status)

	// The submitter cannot resolve their own entry without the permission.
	assert.ErrorIs(t, verify.Resolve(ctx, submitterID, id, model.DecisionAccept, ""), repository.ErrForbidden)

	// The per-kind permission works where it matches.
	titleID, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldOtherTitle,
		addRequest(model.OtherTitle{Title: "Film1", Country: "POLAND"}))
	require.NoError(t, err)
	assert.NoError(t, verify.Resolve(ctx, verifierTitleID, titleID, model.DecisionAccept, ""))
}

func TestResolveIsOneShot(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre,
		addRequest(model.Genre{Genre: "DRAMA"}))
	require.NoError(t, err)

	require.NoError(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionAccept, ""))

	// A second resolution attempt, either way, finds no WAITING entry.
	assert.ErrorIs(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionReject, ""), repository.ErrNotFound)
	assert.ErrorIs(t, verify.Resolve(ctx, verifierAllID, id, model.DecisionAccept, ""), repository.ErrNotFound)

	c := mustContribution(t, store, id, model.FieldGenre)
	assert.Equal(t, model.StatusAccepted, c.Status)
}

func TestResolveGuards(t *testing.T) {
	store := newTestStore()
	contribs := NewContributionService(store, nil)
	verify := NewVerificationService(store, nil)
	ctx := context.Background()

	id, err := contribs.Create(ctx, submitterID, testMovieID, model.FieldGenre,
		addRequest(model.Genre{Genre: "DRAMA"}))
	require.NoError(t, err)

	assert.ErrorIs(t, verify.Resolve(ctx, unknownID, id, model.DecisionAccept, ""), repository.ErrNotFound)
	assert.ErrorIs(t, verify.Resolve(ctx, disabledUserID, id, model.DecisionAccept, ""), repository.ErrNotFound)
	assert.ErrorIs(t, verify.Resolve(ctx, verifierAllID, unknownID, model.DecisionAccept, ""), repository.ErrNotFound)
	assert.ErrorIs(t, verify.Resolve(ctx, verifierAllID, id, "MAYBE", ""), repository.ErrBadRequest)

	// The bad decision attempt must not have changed anything.
	c := mustContribution(t, store, id, model.FieldGenre)
	assert.Equal(t, model.StatusWaiting, c.Status)
}
