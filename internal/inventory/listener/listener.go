package listener

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const orderCreated = "OrderCreated"

// MessageReader is the part of *kafka.Reader the listener needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader builds a consumer-group reader for the POS sales topic.
func NewReader(cfg *Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

type SalesListener struct {
	reader  MessageReader
	uc      inventory.UseCase
	logger  logger.ZapLogger
	backoff time.Duration
}

func NewSalesListener(reader MessageReader, uc inventory.UseCase, log logger.ZapLogger) *SalesListener {
	return &SalesListener{
		reader:  reader,
		uc:      uc,
		logger:  log,
		backoff: time.Second,
	}
}

// Start consumes until ctx is cancelled.
func (l *SalesListener) Start(ctx context.Context) error {
	l.logger.Info("starting sales listener")
	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("stopping sales listener")
				return nil
			}
			l.logger.Error("failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.backoff):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID    string             `json:"id"`
	Items []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// processMessage records one SALE per order line and returns how many were
// accepted. Rejected lines are logged; the rest of the order still applies.
func (l *SalesListener) processMessage(ctx context.Context, value []byte) int {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal event", zap.Error(err))
		return 0
	}
	if event.EventType != orderCreated {
		return 0
	}

	l.logger.Info("processing order", zap.String("order_id", event.Payload.ID))

	applied := 0
	for _, item := range event.Payload.Items {
		qty := int64(item.Quantity)
		if float64(qty) != item.Quantity || item.Quantity > math.MaxInt32 {
			l.logger.Warn("skipping fractional quantity",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Float64("quantity", item.Quantity),
			)
			continue
		}

		_, err := l.uc.RecordTransaction(ctx, &dto.RecordTransactionInput{
			ProductID: item.ProductID,
			Type:      model.TransactionSale,
			Quantity:  qty,
			Date:      event.Timestamp,
		})
		if err != nil {
			l.logger.Error("failed to record sale for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			continue
		}
		applied++
	}
	return applied
}
