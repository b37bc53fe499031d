package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestDeriveStatusPriority(t *testing.T) {
	fulfillments := []FulfillmentStage{FulfillmentUnstarted, FulfillmentInProduction, FulfillmentComplete, FulfillmentCancelled}
	payments := []PaymentStage{PaymentPending, PaymentPaid, PaymentFailed}

	for _, f := range fulfillments {
		for _, p := range payments {
			got := DeriveStatus(f, p)
			switch {
			case f == FulfillmentCancelled:
				assert.Equal(t, StatusCancelled, got, "f=%s p=%s", f, p)
			case f == FulfillmentComplete:
				assert.Equal(t, StatusComplete, got, "f=%s p=%s", f, p)
			case f == FulfillmentInProduction:
				assert.Equal(t, StatusInProduction, got, "f=%s p=%s", f, p)
			case p == PaymentPaid:
				assert.Equal(t, StatusPaid, got, "f=%s p=%s", f, p)
			default:
				assert.Equal(t, StatusAwaitingPayment, got, "f=%s p=%s", f, p)
			}
		}
	}
}

func TestProductionDominatesPendingPayment(t *testing.T) {
	// An order already in production never reverts to awaiting-payment.
	assert.Equal(t, StatusInProduction, DeriveStatus(FulfillmentInProduction, PaymentPending))
}

func TestApplyCommand(t *testing.T) {
	f, p, ok := ApplyCommand(FulfillmentUnstarted, PaymentPending, CommandMarkPaid)
	require.True(t, ok)
	assert.Equal(t, FulfillmentUnstarted, f)
	assert.Equal(t, PaymentPaid, p)

	f, p, ok = ApplyCommand(FulfillmentUnstarted, PaymentPending, CommandStartProduction)
	require.True(t, ok)
	assert.Equal(t, FulfillmentInProduction, f)
	assert.Equal(t, PaymentPending, p)

	f, p, ok = ApplyCommand(FulfillmentInProduction, PaymentPaid, CommandMarkComplete)
	require.True(t, ok)
	assert.Equal(t, FulfillmentComplete, f)
	assert.Equal(t, PaymentPaid, p)
}

func TestCancelForcesPaymentFailed(t *testing.T) {
	f, p, ok := ApplyCommand(FulfillmentInProduction, PaymentPaid, CommandCancel)
	require.True(t, ok)
	assert.Equal(t, FulfillmentCancelled, f)
	assert.Equal(t, PaymentFailed, p)
	assert.Equal(t, StatusCancelled, DeriveStatus(f, p))
}

func TestApplyCommandUnknown(t *testing.T) {
	f, p, ok := ApplyCommand(FulfillmentUnstarted, PaymentPending, StatusCommand("ship-to-moon"))
	assert.False(t, ok)
	assert.Equal(t, FulfillmentUnstarted, f)
	assert.Equal(t, PaymentPending, p)
}

func TestTerminalStages(t *testing.T) {
	assert.False(t, FulfillmentUnstarted.Terminal())
	assert.False(t, FulfillmentInProduction.Terminal())
	assert.True(t, FulfillmentComplete.Terminal())
	assert.True(t, FulfillmentCancelled.Terminal())
}

func TestLatestProof(t *testing.T) {
	attempts := []PaymentAttempt{
		{AttemptID: "a1", ProofRef: "uploads/one.jpg", SubmittedAt: mustTime(t, "2026-01-01T10:00:00Z")},
		{AttemptID: "a2", SubmittedAt: mustTime(t, "2026-01-02T10:00:00Z")},
		{AttemptID: "a3", ProofRef: "uploads/three.jpg", SubmittedAt: mustTime(t, "2026-01-01T12:00:00Z")},
	}
	got, ok := LatestProof(attempts)
	require.True(t, ok)
	assert.Equal(t, "a3", got.AttemptID)

	_, ok = LatestProof(nil)
	assert.False(t, ok)
}
