package publisher

import (
	"context"
	"encoding/json"

	"github.com/farmsync/feedstock-service/internal/stock"
	"github.com/farmsync/feedstock-service/pkg/broker"
)

// KafkaPublisher emits stock events keyed by feed id so that events for one
// feed stay ordered on a single partition.
type KafkaPublisher struct {
	producer *broker.Producer
}

func NewKafkaPublisher(producer *broker.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishStockAdjusted(ctx context.Context, event stock.StockAdjustedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, []byte(event.FeedID), value)
}
