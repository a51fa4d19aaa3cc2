package publisher

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Config struct {
	Brokers []string
	Topic   string
}

func NewWriter(cfg *Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

type AlertPublisher struct {
	writer MessageWriter
}

var _ inventory.AlertPublisher = (*AlertPublisher)(nil)

func NewAlertPublisher(writer MessageWriter) *AlertPublisher {
	return &AlertPublisher{writer: writer}
}

// PublishStockAlert keys the message by product so alerts for one product
// stay ordered on a single partition.
func (p *AlertPublisher) PublishStockAlert(ctx context.Context, event *model.StockAlertEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "publisher.PublishStockAlert.Marshal")
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
		Time:  event.Timestamp,
	})
	return errors.Wrap(err, "publisher.PublishStockAlert")
}
