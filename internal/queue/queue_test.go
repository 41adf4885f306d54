package queue_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unclebandit/agency-portal-backend/internal/queue"
)

func TestInMemoryQueue_PublishWithoutSubscribers(t *testing.T) {
	q := queue.NewInMemoryQueue(nil)
	err := q.Publish(queue.TopicReviewEvents, "x")
	assert.Error(t, err)
}

func TestInMemoryQueue_DeliversToEverySubscriber(t *testing.T) {
	q := queue.NewInMemoryQueue(nil)

	var calls int32
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Subscribe(queue.TopicReviewEvents, func(payload any) error {
			assert.Equal(t, "hello", payload)
			atomic.AddInt32(&calls, 1)
			return nil
		}))
	}

	require.NoError(t, q.Publish(queue.TopicReviewEvents, "hello"))
	q.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInMemoryQueue_RetriesThenSucceeds(t *testing.T) {
	q := queue.NewInMemoryQueue(nil)
	q.Backoff = time.Millisecond

	var attempts int32
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}))

	require.NoError(t, q.Publish("t", 1))
	q.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestInMemoryQueue_GivesUpAfterMaxRetries(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	q := queue.NewInMemoryQueue(zap.New(core))
	q.Backoff = time.Millisecond
	q.MaxRetries = 2

	var attempts int32
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent")
	}))

	require.NoError(t, q.Publish("t", 1))
	q.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, logs.FilterMessage("job permanently failed").Len())
}
