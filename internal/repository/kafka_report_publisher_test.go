package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroCast/internal/domain/models"
)

type fakeProducer struct {
	topic  string
	key    []byte
	value  interface{}
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaReportPublisher_PublishReport(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafkaReportPublisher(producer, "macro.prewarm")

	report := models.PrewarmReport{
		StartedAt: time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC),
		Horizon:   6,
		Items:     []models.PrewarmItem{{Series: "selic", OK: true}},
	}
	require.NoError(t, pub.PublishReport(context.Background(), report))

	assert.Equal(t, "macro.prewarm", producer.topic)
	assert.Equal(t, "2024-06-01T03:00:00Z", string(producer.key))
	assert.Equal(t, report, producer.value)

	require.NoError(t, pub.Close())
	assert.True(t, producer.closed)
}

func TestKafkaReportPublisher_PropagatesError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	pub := NewKafkaReportPublisher(producer, "macro.prewarm")

	err := pub.PublishReport(context.Background(), models.PrewarmReport{})
	assert.EqualError(t, err, "broker down")
}
