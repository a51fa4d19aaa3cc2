package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func TestPublishStockAlert(t *testing.T) {
	w := &captureWriter{}
	p := NewAlertPublisher(w)
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	err := p.PublishStockAlert(context.Background(), &model.StockAlertEvent{
		EventID:    "e1",
		EventType:  "StockAlertRaised",
		ProductID:  "P001",
		Stock:      2,
		AlertLevel: model.AlertCritical,
		Timestamp:  at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "P001", string(msg.Key))
	assert.True(t, msg.Time.Equal(at))

	var decoded model.StockAlertEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, model.AlertCritical, decoded.AlertLevel)
	assert.Equal(t, int64(2), decoded.Stock)
}

func TestPublishStockAlert_WriterError(t *testing.T) {
	p := NewAlertPublisher(&captureWriter{err: errors.New("leader not available")})

	err := p.PublishStockAlert(context.Background(), &model.StockAlertEvent{ProductID: "P001"})
	assert.ErrorContains(t, err, "leader not available")
}
