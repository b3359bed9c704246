package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/roof-spec-etl/internal/config"
	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	err       error
	committed []int64
	closed    bool
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return msg, nil
	}
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return kafkago.Message{}, err
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeFetcher) Close() error {
	f.closed = true
	return nil
}

func testReader(f *fakeFetcher, maxBytes int) *Reader {
	cfg := &config.Config{BatchFlushInterval: 50 * time.Millisecond, MaxDescriptionBytes: maxBytes}
	return newReader(f, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func messages(n int) []kafkago.Message {
	out := make([]kafkago.Message, n)
	for i := range out {
		out[i] = kafkago.Message{Topic: "project-descriptions", Offset: int64(i), Value: []byte("GAF TPO 30ft Dallas TX")}
	}
	return out
}

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"id":"req-1","description":"GAF TPO 30ft Dallas TX"}`),
		Topic:     "project-descriptions",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("estimating-portal")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"id":"req-1","description":"GAF TPO 30ft Dallas TX"}`, string(raw.Value))
	assert.Equal(t, "project-descriptions", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "estimating-portal", raw.Headers["source"])
}

func TestReader_ExtractBatch_FullBatch(t *testing.T) {
	f := &fakeFetcher{msgs: messages(5)}
	r := testReader(f, 1024)

	batch, err := r.ExtractBatch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, int64(2), batch[2].Offset)

	require.NoError(t, batch[1].Commit(context.Background()))
	assert.Equal(t, []int64{1}, f.committed)
}

func TestReader_ExtractBatch_FlushesOnInterval(t *testing.T) {
	f := &fakeFetcher{msgs: messages(2)}
	r := testReader(f, 1024)

	start := time.Now()
	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)

	assert.Len(t, batch, 2)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReader_ExtractBatch_SkipsOversized(t *testing.T) {
	msgs := messages(2)
	msgs[0].Value = []byte(strings.Repeat("x", 64))
	f := &fakeFetcher{msgs: msgs}
	r := testReader(f, 32)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, batch, 1)
	assert.Equal(t, int64(1), batch[0].Offset)
	assert.Equal(t, []int64{0}, f.committed, "oversized message is committed")
}

func TestReader_ExtractBatch_FirstFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("broker down")}
	r := testReader(f, 1024)

	_, err := r.ExtractBatch(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestReader_ExtractBatch_PartialOnLaterError(t *testing.T) {
	f := &fakeFetcher{msgs: messages(1), err: errors.New("connection reset")}
	r := testReader(f, 1024)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestReader_Close(t *testing.T) {
	f := &fakeFetcher{}
	require.NoError(t, testReader(f, 0).Close())
	assert.True(t, f.closed)
}

func TestSerializeToMessage(t *testing.T) {
	analyzedAt := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)
	a := domain.Analysis{
		ID:               "6f1c0a8e-0000-5000-8000-000000000000",
		Input:            "GAF TPO 30ft Dallas TX",
		RequiredApproval: domain.RequiredApproval{Tier: domain.TierICCES},
		Matches: []domain.MatchResult{
			{ManufacturerKey: domain.GAF, ManufacturerName: "GAF"},
		},
		AnalyzedAt: analyzedAt,
	}

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte(a.ID), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "required_tier", msg.Headers[0].Key)
	assert.Equal(t, []byte("icc_es"), msg.Headers[0].Value)
	assert.Equal(t, "match_count", msg.Headers[1].Key)
	assert.Equal(t, []byte("1"), msg.Headers[1].Value)
	assert.Equal(t, "analyzed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(analyzedAt.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded domain.Analysis
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, a.ID, decoded.ID)
	assert.Equal(t, domain.GAF, decoded.Matches[0].ManufacturerKey)
}
