package model

import "time"

// FieldRecord is one persisted value for one field kind on one movie.  The
// envelope is shared by all thirteen kinds; only the payload differs.  The
// kind discriminator is fixed at construction and the payload column holds
// the kind's JSON form.
//
// Lifecycle: a record is created WAITING, owned by its submitter, and moves
// to ACCEPTED or REJECTED exactly once through verification.  An ACCEPTED
// record may afterwards acquire a pending change (a queued edit or delete
// proposed by a later contribution) without its own status or live payload
// changing until that later contribution is resolved.
//
// Fields:
//  ID          – primary key identifier.
//  MovieID     – movie the value belongs to.
//  SubmitterID – user who proposed the value.
//  Kind        – field kind discriminator.
//  Status      – moderation status (WAITING, ACCEPTED, REJECTED).
//  Payload     – the live value for this record's kind.
//  Pending     – queued change marker (NONE, UPDATE, DELETE).
//  Proposed    – the queued replacement payload when Pending is UPDATE.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type FieldRecord struct {
	ID          uint64        // field_records.id
	MovieID     uint64        // field_records.movie_id
	SubmitterID uint64        // field_records.submitter_id
	Kind        FieldKind     // field_records.kind
	Status      DataStatus    // field_records.status
	Payload     Payload       // field_records.payload (JSON)
	Pending     PendingChange // field_records.pending_change
	Proposed    Payload       // field_records.proposed_payload (JSON, nullable)
	CreatedAt   time.Time     // field_records.created_at
	UpdatedAt   time.Time     // field_records.updated_at
}

// Active reports whether the record occupies its duplicate-key slot: only
// ACCEPTED and WAITING records block a new value with the same key.
func (r *FieldRecord) Active() bool {
	return r.Status == StatusAccepted || r.Status == StatusWaiting
}
