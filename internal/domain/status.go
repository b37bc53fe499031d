package domain

// Fulfillment and payment stages evolve independently; the customer-facing
// status is always derived from the pair and never persisted.

type FulfillmentStage string

const (
	FulfillmentUnstarted    FulfillmentStage = "unstarted"
	FulfillmentInProduction FulfillmentStage = "in-production"
	FulfillmentComplete     FulfillmentStage = "complete"
	FulfillmentCancelled    FulfillmentStage = "cancelled"
)

func (f FulfillmentStage) Terminal() bool {
	return f == FulfillmentComplete || f == FulfillmentCancelled
}

type PaymentStage string

const (
	PaymentPending PaymentStage = "pending"
	PaymentPaid    PaymentStage = "paid"
	PaymentFailed  PaymentStage = "failed"
)

type Status string

const (
	StatusAwaitingPayment Status = "awaiting-payment"
	StatusPaid            Status = "paid"
	StatusInProduction    Status = "in-production"
	StatusComplete        Status = "complete"
	StatusCancelled       Status = "cancelled"
)

type StatusCommand string

const (
	CommandMarkPaid        StatusCommand = "mark-paid"
	CommandStartProduction StatusCommand = "start-production"
	CommandMarkComplete    StatusCommand = "mark-complete"
	CommandCancel          StatusCommand = "cancel"
)

// DeriveStatus reduces the stage pair to the single displayed status.
// Evaluation order is a contract: fulfillment progress dominates payment
// state, so an order in production never shows awaiting-payment even while
// its payment stage is still pending.
func DeriveStatus(f FulfillmentStage, p PaymentStage) Status {
	switch {
	case f == FulfillmentCancelled:
		return StatusCancelled
	case f == FulfillmentComplete:
		return StatusComplete
	case f == FulfillmentInProduction:
		return StatusInProduction
	case p == PaymentPaid:
		return StatusPaid
	default:
		return StatusAwaitingPayment
	}
}

// ApplyCommand computes the next stage pair for a status command.
// Cancellation forcibly fails payment regardless of its prior value.
// ok is false only for an unrecognized command.
func ApplyCommand(f FulfillmentStage, p PaymentStage, cmd StatusCommand) (FulfillmentStage, PaymentStage, bool) {
	switch cmd {
	case CommandMarkPaid:
		return f, PaymentPaid, true
	case CommandStartProduction:
		return FulfillmentInProduction, p, true
	case CommandMarkComplete:
		return FulfillmentComplete, p, true
	case CommandCancel:
		return FulfillmentCancelled, PaymentFailed, true
	default:
		return f, p, false
	}
}
