package model

// DataStatus is the moderation status shared by movies, field records and
// contributions.  Every record is created WAITING and moves to ACCEPTED or
// REJECTED exactly once through the verification flow; it never reverts.
type DataStatus string

const (
	StatusWaiting  DataStatus = "WAITING"
	StatusAccepted DataStatus = "ACCEPTED"
	StatusRejected DataStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s DataStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// VerificationDecision is the outcome chosen by a moderator when resolving
// a contribution.
type VerificationDecision string

const (
	DecisionAccept VerificationDecision = "ACCEPT"
	DecisionReject VerificationDecision = "REJECT"
)

// ParseDecision converts a request string into a VerificationDecision.
func ParseDecision(s string) (VerificationDecision, bool) {
	switch VerificationDecision(s) {
	case DecisionAccept:
		return DecisionAccept, true
	case DecisionReject:
		return DecisionReject, true
	}
	return "", false
}

// PendingChange marks a queued proposal attached to a field record that is
// held until the contribution owning it is resolved.  An ACCEPTED record may
// carry at most one pending change at a time.
type PendingChange string

const (
	PendingNone   PendingChange = "NONE"
	PendingUpdate PendingChange = "UPDATE"
	PendingDelete PendingChange = "DELETE"
)
