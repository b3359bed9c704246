package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/roof-spec-etl/internal/config"
	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces analyses to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes analyses in a single WriteMessages call.
// Messages are keyed by analysis ID so replays of a description land on the
// same partition.
func (w *Writer) LoadBatch(ctx context.Context, analyses []domain.Analysis) error {
	if len(analyses) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(analyses))
	for i := range analyses {
		msg, err := serializeToMessage(analyses[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write analyses: %w", err)
	}
	w.logger.Debug("analyses published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Analysis into a Kafka message.
func serializeToMessage(a domain.Analysis) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "required_tier", Value: []byte(a.RequiredApproval.Tier)},
			{Key: "match_count", Value: []byte(strconv.Itoa(len(a.Matches)))},
			{Key: "analyzed_at", Value: []byte(a.AnalyzedAt.Format(time.RFC3339))},
		},
	}, nil
}
