package model

import "time"

// Verification records the moderation decision applied to a contribution.
//
// Fields:
//  Decision   – ACCEPT or REJECT.
//  Comment    – optional note from the verifier.
//  VerifierID – user who made the decision.
//  Date       – when the decision was made (UTC).
type Verification struct {
	Decision   VerificationDecision // contributions.verification_decision
	Comment    string               // contributions.verification_comment
	VerifierID uint64               // contributions.verifier_id
	Date       time.Time            // contributions.verified_at
}

// Contribution is a ledger entry: one user's batched add/update/delete
// proposal for a single field kind on a single movie.  It is created
// WAITING and resolved exactly once by a verifier; the resolution cascades
// status transitions onto every referenced field record.
//
// Fields:
//  ID           – primary key identifier.
//  MovieID      – movie the proposal targets.
//  Field        – field kind all batched operations apply to.
//  SubmitterID  – user who submitted the proposal.
//  IDsToAdd     – newly created WAITING field records.
//  IDsToUpdate  – existing records targeted for an edit.
//  IDsToDelete  – existing records targeted for removal.
//  Sources      – evidence references supplied by the submitter.
//  Comment      – optional note from the submitter.
//  Status       – WAITING until resolved, then ACCEPTED or REJECTED.
//  Verification – resolution details, nil while WAITING.
//  CreatedAt    – creation timestamp.
type Contribution struct {
	ID           uint64        // contributions.id
	MovieID      uint64        // contributions.movie_id
	Field        FieldKind     // contributions.kind
	SubmitterID  uint64        // contributions.submitter_id
	IDsToAdd     []uint64      // contributions.ids_to_add (JSON)
	IDsToUpdate  []uint64      // contributions.ids_to_update (JSON)
	IDsToDelete  []uint64      // contributions.ids_to_delete (JSON)
	Sources      []string      // contributions.sources (JSON)
	Comment      string        // contributions.comment
	Status       DataStatus    // contributions.status
	Verification *Verification // nil while WAITING
	CreatedAt    time.Time     // contributions.created_at
}

// References reports whether the record id appears in any of the three
// operation sets.
func (c *Contribution) References(recordID uint64) bool {
	return containsID(c.IDsToAdd, recordID) ||
		containsID(c.IDsToUpdate, recordID) ||
		containsID(c.IDsToDelete, recordID)
}

// Targets reports whether the record id appears in the update or delete set.
func (c *Contribution) Targets(recordID uint64) bool {
	return containsID(c.IDsToUpdate, recordID) || containsID(c.IDsToDelete, recordID)
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
