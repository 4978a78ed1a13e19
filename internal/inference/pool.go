package inference

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/baserah/baserah/internal/models"
)

// ErrPoolClosed is returned when submitting to a pool that has been shut down
var ErrPoolClosed = errors.New("pool closed")

// Responder produces a response for one utterance
type Responder interface {
	Respond(ctx context.Context, input string) (*models.Response, error)
}

// Request is a single utterance queued for processing
type Request struct {
	ID       string
	Input    string
	Callback func(*Result) // Called when completed
	Context  context.Context
}

// Result is the outcome of a pooled request
type Result struct {
	ID       string
	Input    string
	Response *models.Response
	Error    error
	Latency  time.Duration
}

// Pool runs utterances through a responder on a fixed set of workers
type Pool struct {
	responder Responder
	workers   int
	queue     chan *Request
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	semaphore chan struct{} // Limits concurrent requests
	metrics   *PoolMetrics
	closed    bool
	mu        sync.RWMutex
}

// PoolMetrics tracks pool performance
type PoolMetrics struct {
	TotalRequests   int64
	CompletedOK     int64
	CompletedError  int64
	AverageLatency  time.Duration
	TotalLatency    time.Duration
	CurrentInflight int
	mu              sync.RWMutex
}

// PoolConfig holds pool configuration
type PoolConfig struct {
	Workers       int `mapstructure:"workers"`        // Number of worker goroutines
	QueueSize     int `mapstructure:"queue_size"`     // Size of request queue
	MaxConcurrent int `mapstructure:"max_concurrent"` // Maximum concurrent requests
}

// DefaultPoolConfig returns default pool configuration
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Workers:       runtime.NumCPU(),
		QueueSize:     256,
		MaxConcurrent: runtime.NumCPU(),
	}
}

// NewPool creates a pool and starts its workers
func NewPool(responder Responder, config *PoolConfig) *Pool {
	if config == nil {
		config = DefaultPoolConfig()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = config.Workers
	}

	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		responder: responder,
		workers:   config.Workers,
		queue:     make(chan *Request, config.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		semaphore: make(chan struct{}, config.MaxConcurrent),
		metrics:   &PoolMetrics{},
	}

	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// worker processes requests from the queue
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case req, ok := <-p.queue:
			if !ok {
				return
			}
			p.processRequest(req)
		}
	}
}

// processRequest handles a single request
func (p *Pool) processRequest(req *Request) {
	select {
	case p.semaphore <- struct{}{}:
		defer func() { <-p.semaphore }()
	case <-req.Context.Done():
		// Request cancelled while waiting for semaphore
		p.updateMetrics(0, false)
		if req.Callback != nil {
			req.Callback(&Result{ID: req.ID, Input: req.Input, Error: req.Context.Err()})
		}
		return
	}

	p.metrics.mu.Lock()
	p.metrics.CurrentInflight++
	p.metrics.mu.Unlock()

	defer func() {
		p.metrics.mu.Lock()
		p.metrics.CurrentInflight--
		p.metrics.mu.Unlock()
	}()

	startTime := time.Now()
	resp, err := p.responder.Respond(req.Context, req.Input)
	latency := time.Since(startTime)

	p.updateMetrics(latency, err == nil)

	if req.Callback != nil {
		req.Callback(&Result{
			ID:       req.ID,
			Input:    req.Input,
			Response: resp,
			Error:    err,
			Latency:  latency,
		})
	}
}

// updateMetrics updates pool metrics
func (p *Pool) updateMetrics(latency time.Duration, success bool) {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	p.metrics.TotalRequests++
	if success {
		p.metrics.CompletedOK++
	} else {
		p.metrics.CompletedError++
	}

	p.metrics.TotalLatency += latency
	if p.metrics.CompletedOK > 0 {
		p.metrics.AverageLatency = p.metrics.TotalLatency / time.Duration(p.metrics.CompletedOK)
	}
}

// Submit queues a request without waiting for it
func (p *Pool) Submit(req *Request) error {
	if req.Context == nil {
		req.Context = p.ctx
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- req:
		return nil
	case <-req.Context.Done():
		return req.Context.Err()
	default:
		return fmt.Errorf("queue full")
	}
}

// SubmitSync queues an utterance and waits for its result
func (p *Pool) SubmitSync(ctx context.Context, input string) (*Result, error) {
	resultChan := make(chan *Result, 1)

	req := &Request{
		ID:      fmt.Sprintf("sync-%d", time.Now().UnixNano()),
		Input:   input,
		Context: ctx,
		Callback: func(result *Result) {
			resultChan <- result
		},
	}

	if err := p.Submit(req); err != nil {
		return nil, err
	}

	select {
	case result := <-resultChan:
		return result, result.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessBatch runs every input through the pool and returns the results in
// input order. Inputs rejected by a full queue are retried until ctx ends.
func (p *Pool) ProcessBatch(ctx context.Context, inputs []string) []*Result {
	results := make([]*Result, len(inputs))
	var wg sync.WaitGroup

	for i, input := range inputs {
		i, input := i, input
		wg.Add(1)

		req := &Request{
			ID:      fmt.Sprintf("batch-%d", i),
			Input:   input,
			Context: ctx,
			Callback: func(result *Result) {
				results[i] = result
				wg.Done()
			},
		}

		for {
			err := p.Submit(req)
			if err == nil {
				break
			}
			if errors.Is(err, ErrPoolClosed) || ctx.Err() != nil {
				results[i] = &Result{ID: req.ID, Input: input, Error: err}
				wg.Done()
				break
			}
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Millisecond):
			}
		}
	}

	wg.Wait()
	return results
}

// GetMetrics returns current pool metrics
func (p *Pool) GetMetrics() PoolMetrics {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	return PoolMetrics{
		TotalRequests:   p.metrics.TotalRequests,
		CompletedOK:     p.metrics.CompletedOK,
		CompletedError:  p.metrics.CompletedError,
		AverageLatency:  p.metrics.AverageLatency,
		TotalLatency:    p.metrics.TotalLatency,
		CurrentInflight: p.metrics.CurrentInflight,
	}
}

// QueueLength returns the current queue length
func (p *Pool) QueueLength() int {
	return len(p.queue)
}

// Shutdown stops accepting requests and waits for queued ones to finish
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
