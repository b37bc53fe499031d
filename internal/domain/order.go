package domain

import "time"

// OrderLineItem snapshots a service option's price at order creation so
// later catalog changes never touch historical orders.
type OrderLineItem struct {
	ServiceID string `json:"serviceId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type Order struct {
	OrderID     string           `json:"orderId"`
	CustomerID  string           `json:"customerId"`
	Items       []OrderLineItem  `json:"items"`
	TotalAmount int64            `json:"totalAmount"`
	Fulfillment FulfillmentStage `json:"fulfillment"`
	Payment     PaymentStage     `json:"payment"`
	DocumentRef string           `json:"documentRef,omitempty"`
	Note        string           `json:"note,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Status is the derived customer-facing label for the current stage pair.
func (o *Order) Status() Status {
	return DeriveStatus(o.Fulfillment, o.Payment)
}
