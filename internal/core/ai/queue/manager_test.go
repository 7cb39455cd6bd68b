package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"food-analyzer/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	delay    time.Duration
	err      error
	inFlight int32
	peak     int32
	calls    int32
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: "echo:" + req.Prompt}, nil
}

func (f *fakeProvider) GetModel() string          { return "fake" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error              { return nil }

func TestManager_Submit(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, 2, 10)
	defer m.Close()

	resp, err := m.Submit(context.Background(), &provider.Request{Prompt: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "echo:hola", resp.Content)

	status := m.GetQueueStatus()
	assert.Equal(t, int64(1), status.ProcessedCount)
	assert.Equal(t, 2, status.Workers)
	assert.Equal(t, 10, status.MaxQueueSize)
}

func TestManager_BoundsConcurrency(t *testing.T) {
	p := &fakeProvider{delay: 20 * time.Millisecond}
	m := NewManager(p, 3, 50)
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Submit(context.Background(), &provider.Request{Prompt: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&p.peak), int32(3))
	assert.Equal(t, int32(12), atomic.LoadInt32(&p.calls))
}

func TestManager_ProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("quota exceeded")}
	m := NewManager(p, 1, 5)
	defer m.Close()

	_, err := m.Submit(context.Background(), &provider.Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, int64(1), m.GetQueueStatus().FailedCount)
}

func TestManager_ContextCancelled(t *testing.T) {
	p := &fakeProvider{delay: time.Second}
	m := NewManager(p, 1, 5)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Submit(ctx, &provider.Request{Prompt: "x"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestManager_Closed(t *testing.T) {
	m := NewManager(&fakeProvider{}, 1, 5)
	m.Close()
	m.Close()

	_, err := m.Submit(context.Background(), &provider.Request{Prompt: "x"})
	assert.True(t, errors.Is(err, ErrQueueClosed))
}
