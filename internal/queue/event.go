// Package queue defines message payloads exchanged over the message broker.
package queue

// ContributionSubmittedEvent is published when a new contribution lands in
// the ledger. It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type ContributionSubmittedEvent struct {
	ContributionID uint64 `json:"contribution_id"`
	MovieID        uint64 `json:"movie_id"`
	Field          string `json:"field"`
	SubmitterID    uint64 `json:"submitter_id"`
	Added          int    `json:"added"`
	Updated        int    `json:"updated"`
	Deleted        int    `json:"deleted"`
	SubmittedAt    string `json:"submitted_at"`
}

// ContributionResolvedEvent is published when a verifier accepts or
// rejects a contribution. Consumers use it to notify the submitter of the
// outcome.
type ContributionResolvedEvent struct {
	ContributionID uint64 `json:"contribution_id"`
	MovieID        uint64 `json:"movie_id"`
	Field          string `json:"field"`
	SubmitterID    uint64 `json:"submitter_id"`
	VerifierID     uint64 `json:"verifier_id"`
	Decision       string `json:"decision"`
	Comment        string `json:"comment,omitempty"`
	ResolvedAt     string `json:"resolved_at"`
}
