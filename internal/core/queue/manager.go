package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/infrastructure/metrics"
	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
)

// Task 隊列中執行的計算任務
type Task func(ctx context.Context) (interface{}, error)

// job 隊列請求
type job struct {
	ctx    context.Context
	task   Task
	result chan Result
}

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	RejectedCount  int64 `json:"rejected_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器，以固定數量的 worker 執行 CPU 密集的匹配運算
type Manager struct {
	config    config.QueueConfig
	queue     chan *job
	done      chan struct{}
	wg        sync.WaitGroup
	processed int64
	rejected  int64
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		config: cfg.Queue,
		queue:  make(chan *job, cfg.Queue.MaxSize),
		done:   make(chan struct{}),
	}

	for i := 0; i < cfg.Queue.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("隊列管理員已初始化",
		zap.Int("workers", cfg.Queue.Workers),
		zap.Int("max_queue_size", cfg.Queue.MaxSize),
	)
	return m
}

// Submit 將任務加入隊列並等待結果，隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Submit(ctx context.Context, task Task) (interface{}, error) {
	select {
	case <-m.done:
		return nil, common.ErrServiceUnavailable.WithMessage("queue manager is closed")
	default:
	}

	j := &job{
		ctx:    ctx,
		task:   task,
		result: make(chan Result, 1),
	}

	select {
	case m.queue <- j:
		metrics.QueueDepth.Set(float64(len(m.queue)))
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
	default:
		atomic.AddInt64(&m.rejected, 1)
		metrics.QueueRejected.Inc()
		common.LogWarn("隊列已滿，拒絕請求", zap.Int("max_queue_size", m.config.MaxSize))
		return nil, common.ErrQueueFull
	}

	select {
	case res := <-j.result:
		return res.Value, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, common.ErrServiceUnavailable.WithMessage("queue manager is closed")
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case j := <-m.queue:
			metrics.QueueDepth.Set(float64(len(m.queue)))
			j.result <- m.run(id, j)
			atomic.AddInt64(&m.processed, 1)
		}
	}
}

// run 執行單一任務，panic 轉為錯誤
func (m *Manager) run(id int, j *job) (res Result) {
	if err := j.ctx.Err(); err != nil {
		return Result{Error: err}
	}

	defer func() {
		if r := recover(); r != nil {
			common.LogError("隊列任務 panic",
				zap.Int("worker", id),
				zap.Any("panic", r),
			)
			res = Result{Error: common.ErrInternalError.WithErr(fmt.Errorf("task panic: %v", r))}
		}
	}()

	value, err := j.task(j.ctx)
	return Result{Value: value, Error: err}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		RejectedCount:  atomic.LoadInt64(&m.rejected),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 關閉隊列管理器並等待 worker 結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		common.LogInfo("隊列管理員已關閉", zap.Int64("processed", atomic.LoadInt64(&m.processed)))
	})
}
