package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/farmsync/feedstock-service/internal/notification"
	"github.com/farmsync/feedstock-service/internal/stock"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the consuming side of the stock-events topic.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// StockListener consumes committed stock mutations and runs the low-stock
// check for each. Every failure is logged and swallowed: alerting is
// best-effort and must never reach back into inventory correctness.
type StockListener struct {
	consumer MessageReader
	uc       notification.UseCase
	logger   *zap.Logger
}

func NewStockListener(consumer MessageReader, uc notification.UseCase, logger *zap.Logger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("starting stock event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping stock event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read stock event", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event stock.StockAdjustedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal stock event", zap.Error(err))
		return
	}

	if event.EventType != stock.EventTypeStockAdjusted {
		return
	}

	if err := l.uc.LowStockCheck(ctx, event.StockID, event.FeedID, event.QuantityAfter); err != nil {
		l.logger.Error("low stock check failed",
			zap.String("feed_id", event.FeedID),
			zap.Float64("quantity", event.QuantityAfter),
			zap.Error(err),
		)
	}
}
