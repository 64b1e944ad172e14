package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/accountability-ledger/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ciclo de vida das apostas
type KafkaPublisher struct {
	CreatedWriter  *kafka.Writer
	ResolvedWriter *kafka.Writer
}

func NewKafkaPublisher(created, resolved *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{CreatedWriter: created, ResolvedWriter: resolved}
}

func (p *KafkaPublisher) PublishBetCreated(ctx context.Context, e events.BetCreated) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.CreatedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.UserID), Value: b})
}

func (p *KafkaPublisher) PublishBetResolved(ctx context.Context, e events.BetResolved) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.ResolvedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.UserID), Value: b})
}
