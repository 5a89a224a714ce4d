package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Bucket_Acquire_within_burst(t *testing.T) {
	b := NewBucket(1000, 5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 5; i++ {
		assert.NoError(t, b.Acquire(ctx))
	}
	assert.Greater(t, b.Utilization(), 0.0)
}

func Test_Bucket_Acquire_override(t *testing.T) {
	b := NewBucket(1000, 5)
	var waits []time.Duration
	b.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	b.SetOverride(5 * time.Second)
	assert.NoError(t, b.Acquire(context.Background()))
	assert.Equal(t, []time.Duration{5 * time.Second}, waits)
}

func Test_Bucket_Update(t *testing.T) {
	b := NewBucket(1, 1)
	assert.NoError(t, b.Update(Config{MaxRequests: 100, Window: time.Second, ThrottleStart: 0.75, FullThrottle: 0.9}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		assert.NoError(t, b.Acquire(ctx))
	}

	assert.Error(t, b.Update(Config{MaxRequests: 0, Window: time.Second, ThrottleStart: 0.75, FullThrottle: 0.9}))
}
