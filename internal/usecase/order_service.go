package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printshop-backend/internal/domain"
	"printshop-backend/internal/events"
)

type OrderRepo interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, bool, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Order, int, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type PaymentRepo interface {
	Append(ctx context.Context, a *domain.PaymentAttempt) error
	Get(ctx context.Context, id string) (*domain.PaymentAttempt, bool, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error)
	Update(ctx context.Context, a *domain.PaymentAttempt) error
}

// EventSink receives best-effort lifecycle events. Publish failures are
// logged and never fail the originating operation.
type EventSink interface {
	Publish(ctx context.Context, evt events.OrderEvent) error
}

type OrderService struct {
	Orders   OrderRepo
	Payments PaymentRepo
	Events   EventSink
	Logger   *zap.Logger

	// StrictTerminal rejects commands against complete/cancelled orders
	// instead of letting them silently resurrect the order.
	StrictTerminal bool
	// StrictAmounts requires an accepted attempt's claimed amount to match
	// the order total exactly.
	StrictAmounts bool
}

// OrderDetail is the read-side view of one order: the order, its payment
// attempts, and the authoritative proof reference if any attempt carries one.
type OrderDetail struct {
	Order    *domain.Order           `json:"order"`
	Status   domain.Status           `json:"status"`
	Attempts []domain.PaymentAttempt `json:"attempts"`
	ProofRef string                  `json:"proofRef,omitempty"`
}

// CreateOrder persists a new order at the initial (unstarted, pending) stage
// pair. The total amount is set once here and never recomputed.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, items []domain.OrderLineItem, totalAmount int64, documentRef, note string) (*domain.Order, error) {
	if customerID == "" {
		return nil, ValidationError("customer required")
	}
	if len(items) == 0 {
		return nil, ValidationError("order needs at least one line item")
	}
	if totalAmount < 0 {
		return nil, ValidationError("total amount must not be negative")
	}
	now := time.Now().UTC()
	o := &domain.Order{
		OrderID:     "ORD-" + uuid.NewString(),
		CustomerID:  customerID,
		Items:       items,
		TotalAmount: totalAmount,
		Fulfillment: domain.FulfillmentUnstarted,
		Payment:     domain.PaymentPending,
		DocumentRef: documentRef,
		Note:        note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Orders.Put(ctx, o); err != nil {
		return nil, upstream("create order", err)
	}
	s.publish(ctx, events.KindOrderCreated, o)
	s.Logger.Info("order created",
		zap.String("order_id", o.OrderID),
		zap.String("customer_id", o.CustomerID),
		zap.Int64("total_amount", o.TotalAmount))
	return o, nil
}

// ApplyStatusCommand runs one transition of the status machine and persists
// the resulting stage pair.
func (s *OrderService) ApplyStatusCommand(ctx context.Context, orderID string, cmd domain.StatusCommand) (*domain.Order, error) {
	o, ok, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, upstream("load order", err)
	}
	if !ok {
		return nil, NotFoundError("order")
	}
	if s.StrictTerminal && o.Fulfillment.Terminal() {
		return nil, InvalidTransitionError("order is " + string(o.Fulfillment))
	}
	f, p, known := domain.ApplyCommand(o.Fulfillment, o.Payment, cmd)
	if !known {
		return nil, InvalidTransitionError("unknown command " + string(cmd))
	}
	o.Fulfillment = f
	o.Payment = p
	o.UpdatedAt = time.Now().UTC()
	if err := s.Orders.Put(ctx, o); err != nil {
		return nil, upstream("update order", err)
	}
	s.publish(ctx, events.KindStatusChanged, o)
	s.Logger.Info("order status changed",
		zap.String("order_id", o.OrderID),
		zap.String("command", string(cmd)),
		zap.String("status", string(o.Status())))
	return o, nil
}

// RecordPaymentAttempt appends a pending attempt. It never touches the
// order's payment stage; acceptance is a separate staff action.
func (s *OrderService) RecordPaymentAttempt(ctx context.Context, orderID, customerID string, claimedAmount int64, channel, proofRef string) (*domain.PaymentAttempt, error) {
	if claimedAmount < 0 {
		return nil, ValidationError("claimed amount must not be negative")
	}
	o, ok, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, upstream("load order", err)
	}
	if !ok {
		return nil, NotFoundError("order")
	}
	a := &domain.PaymentAttempt{
		AttemptID:   "PAY-" + uuid.NewString(),
		OrderID:     o.OrderID,
		CustomerID:  customerID,
		Amount:      claimedAmount,
		Channel:     channel,
		Status:      domain.AttemptPending,
		ProofRef:    proofRef,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.Payments.Append(ctx, a); err != nil {
		return nil, upstream("record payment attempt", err)
	}
	s.publish(ctx, events.KindPaymentRecorded, o)
	s.Logger.Info("payment attempt recorded",
		zap.String("order_id", o.OrderID),
		zap.String("attempt_id", a.AttemptID),
		zap.Int64("amount", a.Amount))
	return a, nil
}

// ReviewPaymentAttempt settles a pending attempt. Acceptance marks the
// order's payment stage paid via the status machine before the attempt
// itself is settled: a failed order update leaves the attempt pending and
// re-reviewable.
func (s *OrderService) ReviewPaymentAttempt(ctx context.Context, attemptID string, accept bool) (*domain.PaymentAttempt, error) {
	a, ok, err := s.Payments.Get(ctx, attemptID)
	if err != nil {
		return nil, upstream("load payment attempt", err)
	}
	if !ok {
		return nil, NotFoundError("payment attempt")
	}
	if a.Status != domain.AttemptPending {
		return nil, ValidationError("attempt already reviewed")
	}
	if accept {
		o, ok, err := s.Orders.Get(ctx, a.OrderID)
		if err != nil {
			return nil, upstream("load order", err)
		}
		if !ok {
			return nil, NotFoundError("order")
		}
		if s.StrictAmounts && a.Amount != o.TotalAmount {
			return nil, ValidationError("claimed amount does not match order total")
		}
		if _, err := s.ApplyStatusCommand(ctx, a.OrderID, domain.CommandMarkPaid); err != nil {
			return nil, err
		}
		a.Status = domain.AttemptAccepted
	} else {
		a.Status = domain.AttemptRejected
	}
	if err := s.Payments.Update(ctx, a); err != nil {
		return nil, upstream("update payment attempt", err)
	}
	s.Logger.Info("payment attempt reviewed",
		zap.String("attempt_id", a.AttemptID),
		zap.String("order_id", a.OrderID),
		zap.Bool("accepted", accept))
	return a, nil
}

func (s *OrderService) Detail(ctx context.Context, orderID string) (*OrderDetail, error) {
	o, ok, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, upstream("load order", err)
	}
	if !ok {
		return nil, NotFoundError("order")
	}
	attempts, err := s.Payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, upstream("load payment attempts", err)
	}
	d := &OrderDetail{Order: o, Status: o.Status(), Attempts: attempts}
	if proof, found := domain.LatestProof(attempts); found {
		d.ProofRef = proof.ProofRef
	}
	return d, nil
}

func (s *OrderService) List(ctx context.Context, page, pageSize int) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	orders, total, err := s.Orders.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, upstream("list orders", err)
	}
	return orders, total, nil
}

// HistoryRow is one line of a customer's order history.
type HistoryRow struct {
	OrderID     string        `json:"orderId"`
	CreatedAt   time.Time     `json:"createdAt"`
	ItemCount   int           `json:"itemCount"`
	TotalAmount int64         `json:"totalAmount"`
	Status      domain.Status `json:"status"`
}

func (s *OrderService) History(ctx context.Context, customerID string) ([]HistoryRow, error) {
	orders, err := s.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, upstream("list customer orders", err)
	}
	rows := make([]HistoryRow, 0, len(orders))
	for _, o := range orders {
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		rows = append(rows, HistoryRow{
			OrderID:     o.OrderID,
			CreatedAt:   o.CreatedAt,
			ItemCount:   count,
			TotalAmount: o.TotalAmount,
			Status:      o.Status(),
		})
	}
	return rows, nil
}

func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	_, ok, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return upstream("load order", err)
	}
	if !ok {
		return NotFoundError("order")
	}
	if err := s.Orders.Delete(ctx, orderID); err != nil {
		return upstream("delete order", err)
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, kind string, o *domain.Order) {
	if s.Events == nil {
		return
	}
	evt := events.OrderEvent{
		EventID:     uuid.NewString(),
		Kind:        kind,
		OrderID:     o.OrderID,
		CustomerID:  o.CustomerID,
		Fulfillment: string(o.Fulfillment),
		Payment:     string(o.Payment),
		Status:      string(o.Status()),
		TotalAmount: o.TotalAmount,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		s.Logger.Error("failed to publish event",
			zap.String("order_id", o.OrderID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}
