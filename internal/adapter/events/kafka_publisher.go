package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sportsbook-ledger/internal/core/domain"

	"github.com/segmentio/kafka-go"
)

// BetPlacedEvent is the wire contract emitted when a bet is placed.
type BetPlacedEvent struct {
	BetID              string             `json:"bet_id"`
	Ref                string             `json:"ref"`
	AccountID          string             `json:"account_id"`
	StakeCents         int64              `json:"stake_cents"`
	Selections         []domain.Selection `json:"selections"`
	DebitTransactionID string             `json:"debit_transaction_id"`
	TsUnixMs           int64              `json:"ts_unix_ms"`
}

// BetSettledEvent is the wire contract emitted when a bet is settled.
type BetSettledEvent struct {
	BetID       string `json:"bet_id"`
	Ref         string `json:"ref"`
	AccountID   string `json:"account_id"`
	Status      string `json:"status"`
	PayoutCents int64  `json:"payout_cents"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}

// KafkaPublisher implements ports.EventPublisher on top of kafka-go
// writers, one per topic.
type KafkaPublisher struct {
	placed  *kafka.Writer
	settled *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topics.
func NewKafkaPublisher(brokers []string, placedTopic, settledTopic string) *KafkaPublisher {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
	}
	return &KafkaPublisher{
		placed:  newWriter(placedTopic),
		settled: newWriter(settledTopic),
	}
}

// PublishBetPlaced emits a bet_placed event keyed by account id.
func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, bet *domain.Bet) error {
	e := BetPlacedEvent{
		BetID:              bet.ID.String(),
		Ref:                bet.Ref,
		AccountID:          bet.AccountID,
		StakeCents:         bet.StakeCents,
		Selections:         bet.Selections,
		DebitTransactionID: bet.DebitTransactionID,
		TsUnixMs:           time.Now().UnixMilli(),
	}
	return p.publish(ctx, p.placed, bet.AccountID, e)
}

// PublishBetSettled emits a bet_settled event keyed by account id.
func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, bet *domain.Bet) error {
	e := BetSettledEvent{
		BetID:     bet.ID.String(),
		Ref:       bet.Ref,
		AccountID: bet.AccountID,
		Status:    string(bet.Status),
		TsUnixMs:  time.Now().UnixMilli(),
	}
	if bet.PayoutCents != nil {
		e.PayoutCents = *bet.PayoutCents
	}
	return p.publish(ctx, p.settled, bet.AccountID, e)
}

func (p *KafkaPublisher) publish(ctx context.Context, w *kafka.Writer, key string, event any) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b}); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writers.
func (p *KafkaPublisher) Close() error {
	if err := p.placed.Close(); err != nil {
		return err
	}
	return p.settled.Close()
}
