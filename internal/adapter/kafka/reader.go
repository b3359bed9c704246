package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/roof-spec-etl/internal/config"
	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageFetcher is the subset of *kafkago.Reader used by Reader.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Reader consumes project descriptions from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        messageFetcher
	logger        *slog.Logger
	flushInterval time.Duration
	maxValueBytes int
}

// NewReader creates a consumer-group reader for the configured source topic.
// Offsets are committed explicitly after each analysis is loaded.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaSourceTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return newReader(r, cfg, logger)
}

func newReader(f messageFetcher, cfg *config.Config, logger *slog.Logger) *Reader {
	return &Reader{
		reader:        f,
		logger:        logger,
		flushInterval: cfg.BatchFlushInterval,
		maxValueBytes: cfg.MaxDescriptionBytes,
	}
}

// ExtractBatch blocks for the first message, then collects up to batchSize
// messages or until the flush interval elapses. Messages larger than
// MAX_DESCRIPTION_BYTES are committed and dropped.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	batch := make([]domain.RawEvent, 0, batchSize)

	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	if raw, ok := r.accept(ctx, first); ok {
		batch = append(batch, raw)
	}

	flushCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(flushCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			if len(batch) > 0 {
				r.logger.Warn("fetch message failed, flushing partial batch", "error", err, "batch_size", len(batch))
				break
			}
			return nil, fmt.Errorf("fetch message: %w", err)
		}
		if raw, ok := r.accept(ctx, msg); ok {
			batch = append(batch, raw)
		}
	}

	return batch, nil
}

func (r *Reader) accept(ctx context.Context, msg kafkago.Message) (domain.RawEvent, bool) {
	if r.maxValueBytes > 0 && len(msg.Value) > r.maxValueBytes {
		r.logger.Warn("description too large, skipping message",
			"bytes", len(msg.Value),
			"limit", r.maxValueBytes,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		if err := r.reader.CommitMessages(ctx, msg); err != nil {
			r.logger.Warn("commit offset failed", "error", err, "offset", msg.Offset)
		}
		return domain.RawEvent{}, false
	}

	raw := mapMessageToRawEvent(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw, true
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
