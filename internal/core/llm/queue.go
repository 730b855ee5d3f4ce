package llm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/pkg/common"
)

// request 隊列請求
type request struct {
	ctx    context.Context
	html   string
	url    string
	result chan result
}

// result 處理結果
type result struct {
	src *recipe.Source
	err error
}

// QueueStatus 隊列狀態
type QueueStatus struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Queue 以固定數量的 worker 呼叫底層 Extractor，限制對本地模型的並行請求
type Queue struct {
	next      Extractor
	queue     chan *request
	done      chan struct{}
	workers   int
	maxSize   int
	processed int64

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewQueue 創建隊列並啟動 worker
func NewQueue(next Extractor, workers, maxSize int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if maxSize <= 0 {
		maxSize = workers
	}

	q := &Queue{
		next:    next,
		queue:   make(chan *request, maxSize),
		done:    make(chan struct{}),
		workers: workers,
		maxSize: maxSize,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// Extract 排入隊列並等待結果，隊列已滿時回傳 common.ErrServiceUnavailable
func (q *Queue) Extract(ctx context.Context, html, url string) (*recipe.Source, error) {
	req := &request{ctx: ctx, html: html, url: url, result: make(chan result, 1)}

	select {
	case <-q.done:
		return nil, common.Wrap(common.ErrServiceUnavailable, fmt.Errorf("llm queue is closed"))
	default:
	}

	select {
	case q.queue <- req:
		common.LogDebug("LLM request enqueued",
			zap.Int("queue_length", len(q.queue)),
			zap.Int("max_queue_size", q.maxSize),
		)
	default:
		common.LogWarn("LLM queue full", zap.Int("max_queue_size", q.maxSize))
		return nil, common.Wrap(common.ErrServiceUnavailable, fmt.Errorf("llm queue is full"))
	}

	select {
	case res := <-req.result:
		return res.src, res.err
	case <-ctx.Done():
		return nil, common.Wrap(common.ErrGatewayTimeout, ctx.Err())
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case req := <-q.queue:
			q.process(req)
		case <-q.done:
			return
		}
	}
}

func (q *Queue) process(req *request) {
	// 等待期間已取消的請求不再送出
	if err := req.ctx.Err(); err != nil {
		req.result <- result{err: common.Wrap(common.ErrGatewayTimeout, err)}
		return
	}
	src, err := q.next.Extract(req.ctx, req.html, req.url)
	atomic.AddInt64(&q.processed, 1)
	req.result <- result{src: src, err: err}
}

// Status 獲取隊列狀態
func (q *Queue) Status() QueueStatus {
	return QueueStatus{
		QueueLength:    len(q.queue),
		ProcessedCount: atomic.LoadInt64(&q.processed),
		MaxQueueSize:   q.maxSize,
		Workers:        q.workers,
	}
}

// Close 停止 worker，尚在隊列中的請求由呼叫端的 context 結束
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
	q.wg.Wait()
}
