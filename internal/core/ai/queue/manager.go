package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = errors.New("queue manager is closed")
)

// job 隊列請求
type job struct {
	ctx    context.Context
	req    *provider.Request
	result chan result
}

// result 處理結果
type result struct {
	resp *provider.Response
	err  error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 以固定數量的 worker 限制同時對模型的呼叫
type Manager struct {
	provider  provider.Provider
	queue     chan *job
	done      chan struct{}
	workers   int
	maxSize   int
	processed int64
	failed    int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 創建並啟動隊列管理器
func NewManager(p provider.Provider, workers, maxSize int) *Manager {
	m := &Manager{
		provider: p,
		queue:    make(chan *job, maxSize),
		done:     make(chan struct{}),
		workers:  workers,
		maxSize:  maxSize,
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("請求隊列已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

// Submit 將請求加入隊列並等待結果
func (m *Manager) Submit(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	j := &job{ctx: ctx, req: req, result: make(chan result, 1)}

	select {
	case <-m.done:
		return nil, ErrQueueClosed
	default:
	}

	select {
	case m.queue <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrQueueClosed
	default:
		common.LogWarn("請求隊列已滿", zap.Int("max_queue_size", m.maxSize))
		return nil, ErrQueueFull
	}

	select {
	case r := <-j.result:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case j := <-m.queue:
			m.process(id, j)
		}
	}
}

func (m *Manager) process(id int, j *job) {
	// 呼叫者已放棄
	if err := j.ctx.Err(); err != nil {
		j.result <- result{err: err}
		return
	}

	start := time.Now()
	resp, err := m.provider.Generate(j.ctx, j.req)
	common.LogAICall(m.provider.GetModel(), time.Since(start), err)

	if err != nil {
		atomic.AddInt64(&m.failed, 1)
	} else {
		atomic.AddInt64(&m.processed, 1)
	}

	common.LogDebug("worker 完成請求", zap.Int("worker", id), zap.Bool("ok", err == nil))
	j.result <- result{resp: resp, err: err}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		FailedCount:    atomic.LoadInt64(&m.failed),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止所有 worker；尚在隊列中的請求會收到 ErrQueueClosed
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()

		for {
			select {
			case j := <-m.queue:
				j.result <- result{err: ErrQueueClosed}
			default:
				return
			}
		}
	})
}
