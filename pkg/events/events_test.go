package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	e, err := New(TypeOrderCreated, map[string]any{"order_id": 5})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TypeOrderCreated, e.Type)
	assert.False(t, e.OccurredAt.IsZero())

	var p struct {
		OrderID int `json:"order_id"`
	}
	require.NoError(t, e.Decode(&p))
	assert.Equal(t, 5, p.OrderID)
}

func TestNewPublisherWithoutBrokers(t *testing.T) {
	p := NewPublisher(nil)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.PublishEvent(context.Background(), TopicCart, "k", "v"))

	_, err := NewProducer(nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	e, err := New(TypeOrderPaid, struct{}{})
	require.NoError(t, err)

	require.NoError(t, r.PublishEvent(context.Background(), TopicOrder, "1", e))
	require.NoError(t, r.PublishEvent(context.Background(), TopicOrder, "1", "not an envelope"))

	assert.Len(t, r.Published, 2)
	assert.Equal(t, []string{TypeOrderPaid}, r.Types())
}

type stubReader struct {
	msgs      []kafka.Message
	committed []int64
}

func (s *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(s.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, nil
}

func (s *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		s.committed = append(s.committed, m.Offset)
	}
	return nil
}

func (s *stubReader) Close() error { return nil }

func TestConsumerRun(t *testing.T) {
	good, err := New(TypeAuthOTPIssued, map[string]string{"code": "123456"})
	require.NoError(t, err)
	raw, err := json.Marshal(good)
	require.NoError(t, err)

	failing, err := New("fail.me", struct{}{})
	require.NoError(t, err)
	rawFailing, err := json.Marshal(failing)
	require.NoError(t, err)

	r := &stubReader{msgs: []kafka.Message{
		{Offset: 1, Value: raw},
		{Offset: 2, Value: []byte("{not json")},
		{Offset: 3, Value: rawFailing},
	}}
	c := &Consumer{reader: r, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	var seen []string
	err = c.Run(context.Background(), func(_ context.Context, e Event) error {
		seen = append(seen, e.Type)
		if e.Type == "fail.me" {
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{TypeAuthOTPIssued, "fail.me"}, seen)
	assert.Equal(t, []int64{1, 2}, r.committed)
}
