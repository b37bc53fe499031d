package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printshop-backend/internal/domain"
	"printshop-backend/internal/events"
	"printshop-backend/internal/infrastructure/repo"
)

type capturedEvents struct {
	published []events.OrderEvent
	fail      bool
}

func (c *capturedEvents) Publish(_ context.Context, evt events.OrderEvent) error {
	if c.fail {
		return errors.New("broker down")
	}
	c.published = append(c.published, evt)
	return nil
}

func newOrderService(t *testing.T) (*OrderService, *capturedEvents) {
	t.Helper()
	sink := &capturedEvents{}
	svc := &OrderService{
		Orders:   repo.NewMemoryOrderRepo(),
		Payments: repo.NewMemoryPaymentRepo(),
		Events:   sink,
		Logger:   zap.NewNop(),
	}
	return svc, sink
}

func sampleItems() []domain.OrderLineItem {
	return []domain.OrderLineItem{
		{ServiceID: "svc-a4", Name: "Standard A4", Quantity: 20, UnitPrice: 500, LineTotal: 10000},
		{ServiceID: "svc-color", Name: "Color", Quantity: 20, UnitPrice: 1000, LineTotal: 20000},
	}
}

func TestCreateOrderInitialState(t *testing.T) {
	svc, sink := newOrderService(t)

	o, err := svc.CreateOrder(context.Background(), "cust-1", sampleItems(), 30000, "uploads/doc.pdf", "staple top-left")
	require.NoError(t, err)

	assert.NotEmpty(t, o.OrderID)
	assert.Equal(t, domain.FulfillmentUnstarted, o.Fulfillment)
	assert.Equal(t, domain.PaymentPending, o.Payment)
	assert.Equal(t, domain.StatusAwaitingPayment, o.Status())
	assert.Equal(t, int64(30000), o.TotalAmount)

	require.Len(t, sink.published, 1)
	assert.Equal(t, events.KindOrderCreated, sink.published[0].Kind)
	assert.Equal(t, o.OrderID, sink.published[0].OrderID)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "cust-1", nil, 100, "", "")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.CreateOrder(ctx, "cust-1", sampleItems(), -1, "", "")
	require.ErrorAs(t, err, &verr)

	_, err = svc.CreateOrder(ctx, "", sampleItems(), 100, "", "")
	require.ErrorAs(t, err, &verr)
}

func TestAdvanceToProductionBeforePayment(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAwaitingPayment, o.Status())

	// Production is not gated on payment.
	o, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandStartProduction)
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentInProduction, o.Fulfillment)
	assert.Equal(t, domain.PaymentPending, o.Payment)
	assert.Equal(t, domain.StatusInProduction, o.Status())
}

func TestCancelPaidOrder(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandStartProduction)
	require.NoError(t, err)
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandMarkPaid)
	require.NoError(t, err)

	o, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandCancel)
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentCancelled, o.Fulfillment)
	assert.Equal(t, domain.PaymentFailed, o.Payment)
	assert.Equal(t, domain.StatusCancelled, o.Status())
}

func TestApplyStatusCommandUnknown(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)

	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.StatusCommand("teleport"))
	var terr InvalidTransitionError
	require.ErrorAs(t, err, &terr)
}

func TestApplyStatusCommandMissingOrder(t *testing.T) {
	svc, _ := newOrderService(t)
	_, err := svc.ApplyStatusCommand(context.Background(), "ORD-missing", domain.CommandCancel)
	var nerr NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestTerminalGuardPolicy(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandCancel)
	require.NoError(t, err)

	// Permissive by default: a cancelled order can still be transitioned.
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandStartProduction)
	require.NoError(t, err)

	// Strict mode rejects commands from terminal stages.
	svc.StrictTerminal = true
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandCancel)
	require.NoError(t, err)
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandStartProduction)
	var terr InvalidTransitionError
	require.ErrorAs(t, err, &terr)
}

func TestRecordPaymentAttemptLeavesStagesAlone(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)

	a, err := svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "uploads/receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptPending, a.Status)
	assert.Equal(t, "uploads/receipt.jpg", a.ProofRef)

	detail, err := svc.Detail(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, detail.Order.Payment)
	assert.Equal(t, domain.StatusAwaitingPayment, detail.Status)
	assert.Equal(t, "uploads/receipt.jpg", detail.ProofRef)
}

func TestReviewPaymentAttemptAccept(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	a, err := svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "uploads/receipt.jpg")
	require.NoError(t, err)

	a, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptAccepted, a.Status)

	detail, err := svc.Detail(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, detail.Order.Payment)
	assert.Equal(t, domain.StatusPaid, detail.Status)

	// A settled attempt cannot be reviewed twice.
	_, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, false)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestReviewPaymentAttemptReject(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	a, err := svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "")
	require.NoError(t, err)

	a, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptRejected, a.Status)

	detail, err := svc.Detail(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, detail.Order.Payment)
}

func TestReviewPaymentAttemptStrictAmounts(t *testing.T) {
	svc, _ := newOrderService(t)
	svc.StrictAmounts = true
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	a, err := svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 25000, "bank-transfer", "uploads/receipt.jpg")
	require.NoError(t, err)

	_, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, true)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)

	// Rejection needs no amount check.
	a, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptRejected, a.Status)
}

func TestReviewAcceptOnTerminalOrderLeavesAttemptPending(t *testing.T) {
	svc, _ := newOrderService(t)
	svc.StrictTerminal = true
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	a, err := svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "uploads/receipt.jpg")
	require.NoError(t, err)
	_, err = svc.ApplyStatusCommand(ctx, o.OrderID, domain.CommandCancel)
	require.NoError(t, err)

	_, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, true)
	var terr InvalidTransitionError
	require.ErrorAs(t, err, &terr)

	// The failed acceptance must not settle the attempt; it stays pending
	// and can still be reviewed.
	stored, ok, err := svc.Payments.Get(ctx, a.AttemptID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.AttemptPending, stored.Status)

	a, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptRejected, a.Status)
}

func TestReviewAcceptOnMissingOrder(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	a, err := svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, o.OrderID))

	_, err = svc.ReviewPaymentAttempt(ctx, a.AttemptID, true)
	var nerr NotFoundError
	require.ErrorAs(t, err, &nerr)

	stored, ok, err := svc.Payments.Get(ctx, a.AttemptID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.AttemptPending, stored.Status)
}

func TestLatestProofWinsOnResubmission(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)

	_, err = svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "uploads/first.jpg")
	require.NoError(t, err)
	_, err = svc.RecordPaymentAttempt(ctx, o.OrderID, "cust-1", 30000, "bank-transfer", "uploads/second.jpg")
	require.NoError(t, err)

	detail, err := svc.Detail(ctx, o.OrderID)
	require.NoError(t, err)
	require.Len(t, detail.Attempts, 2)
	assert.Equal(t, "uploads/second.jpg", detail.ProofRef)
}

func TestHistory(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, "cust-2", sampleItems(), 9000, "", "")
	require.NoError(t, err)
	_, err = svc.ApplyStatusCommand(ctx, first.OrderID, domain.CommandStartProduction)
	require.NoError(t, err)

	rows, err := svc.History(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.OrderID, rows[0].OrderID)
	assert.Equal(t, 40, rows[0].ItemCount)
	assert.Equal(t, domain.StatusInProduction, rows[0].Status)
}

func TestDeleteOrder(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, o.OrderID))

	var nerr NotFoundError
	err = svc.Delete(ctx, o.OrderID)
	require.ErrorAs(t, err, &nerr)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, sink := newOrderService(t)
	sink.fail = true

	o, err := svc.CreateOrder(context.Background(), "cust-1", sampleItems(), 30000, "", "")
	require.NoError(t, err)
	assert.NotNil(t, o)
}
