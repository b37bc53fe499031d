package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	KindOrderCreated    = "order.created"
	KindStatusChanged   = "order.status-changed"
	KindPaymentRecorded = "order.payment-recorded"
)

// OrderEvent is the message published for every order lifecycle change.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	Kind        string    `json:"kind"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	Fulfillment string    `json:"fulfillment"`
	Payment     string    `json:"payment"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

type KafkaProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish keys messages by order ID so all events for one order land on the
// same partition in submission order.
func (p *KafkaProducer) Publish(ctx context.Context, evt OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
	})
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
