package domain

import "time"

type AttemptStatus string

const (
	AttemptPending  AttemptStatus = "pending"
	AttemptAccepted AttemptStatus = "accepted"
	AttemptRejected AttemptStatus = "rejected"
)

// PaymentAttempt records a customer's claim to have paid. Attempts are
// append-only; resubmission creates a new one. The proof reference is an
// opaque storage location this core never interprets.
type PaymentAttempt struct {
	AttemptID   string        `json:"attemptId"`
	OrderID     string        `json:"orderId"`
	CustomerID  string        `json:"customerId"`
	Amount      int64         `json:"amount"`
	Channel     string        `json:"channel"`
	Status      AttemptStatus `json:"status"`
	ProofRef    string        `json:"proofRef,omitempty"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// LatestProof returns the most recently submitted attempt that carries a
// proof reference; that attempt is authoritative for display.
func LatestProof(attempts []PaymentAttempt) (PaymentAttempt, bool) {
	var best PaymentAttempt
	found := false
	for _, a := range attempts {
		if a.ProofRef == "" {
			continue
		}
		if !found || a.SubmittedAt.After(best.SubmittedAt) {
			best = a
			found = true
		}
	}
	return best, found
}
