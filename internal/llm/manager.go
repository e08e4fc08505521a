package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager coordinates all completion requests: two priority queues drained by
// one dispatcher, with a semaphore bounding concurrent HTTP calls.
type Manager struct {
	criticalQueue   chan *Request
	backgroundQueue chan *Request

	semaphore chan struct{}

	circuitBreaker *CircuitBreaker
	httpClient     *http.Client

	mu      sync.RWMutex
	metrics Metrics

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger *zap.Logger
}

// NewManager creates a new queue manager and starts its dispatcher.
func NewManager(config *Config, circuitBreaker *CircuitBreaker, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	m := &Manager{
		criticalQueue:   make(chan *Request, config.CriticalQueueSize),
		backgroundQueue: make(chan *Request, config.BackgroundQueueSize),
		semaphore:       make(chan struct{}, config.MaxConcurrent),
		circuitBreaker:  circuitBreaker,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
				DisableKeepAlives: false,
			},
		},
		metrics: Metrics{
			CurrentQueueDepth: map[Priority]int{
				PriorityCritical:   0,
				PriorityBackground: 0,
			},
		},
		stopCh: make(chan struct{}),
		logger: logger.Named("llm_queue"),
	}

	m.wg.Add(1)
	go m.dispatcher()

	m.logger.Info("started", zap.Int("concurrent_slots", config.MaxConcurrent))
	return m
}

// Submit adds a request to the queue without blocking; a full queue drops it.
func (m *Manager) Submit(req *Request) error {
	queue := m.backgroundQueue
	if req.Priority == PriorityCritical {
		queue = m.criticalQueue
	}

	select {
	case <-m.stopCh:
		return fmt.Errorf("queue stopped")
	default:
	}

	m.mu.Lock()
	if req.Priority == PriorityCritical {
		m.metrics.CriticalEnqueued++
	} else {
		m.metrics.BackgroundEnqueued++
	}
	m.mu.Unlock()

	select {
	case queue <- req:
		m.mu.Lock()
		m.metrics.CurrentQueueDepth[req.Priority] = len(queue)
		m.mu.Unlock()
		return nil
	default:
		m.mu.Lock()
		if req.Priority == PriorityCritical {
			m.metrics.CriticalDropped++
		} else {
			m.metrics.BackgroundDropped++
		}
		m.mu.Unlock()
		m.logger.Warn("queue full, dropping request",
			zap.String("priority", req.Priority.String()),
			zap.String("request_id", req.ID))
		return fmt.Errorf("queue full")
	}
}

// dispatcher selects next request (critical first, then background)
func (m *Manager) dispatcher() {
	defer m.wg.Done()

	for {
		var req *Request

		select {
		case <-m.stopCh:
			return
		case req = <-m.criticalQueue:
		case req = <-m.backgroundQueue:
			// A critical request may have arrived while this one was picked.
			select {
			case critReq := <-m.criticalQueue:
				m.requeue(req)
				req = critReq
			default:
			}
		}

		select {
		case <-m.stopCh:
			req.ErrorCh <- fmt.Errorf("queue stopped")
			return
		case m.semaphore <- struct{}{}:
		}

		m.wg.Add(1)
		go m.processRequest(req)
	}
}

func (m *Manager) requeue(req *Request) {
	select {
	case m.backgroundQueue <- req:
	default:
		req.ErrorCh <- fmt.Errorf("queue full")
	}
}

// processRequest executes the actual completion call
func (m *Manager) processRequest(req *Request) {
	defer func() {
		<-m.semaphore
		m.wg.Done()

		m.mu.Lock()
		if req.Priority == PriorityCritical {
			m.metrics.CriticalProcessed++
		} else {
			m.metrics.BackgroundProcessed++
		}
		m.mu.Unlock()
	}()

	startTime := time.Now()

	if err := req.Context.Err(); err != nil {
		req.ErrorCh <- err
		return
	}

	ctx, cancel := context.WithTimeout(req.Context, req.Timeout)
	defer cancel()

	var resp *Response
	call := func() error {
		var err error
		resp, err = m.executeHTTPRequest(ctx, req)
		if err == nil && resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("completion service returned status %d", resp.StatusCode)
		}
		return err
	}
	var err error
	if m.circuitBreaker != nil {
		err = m.circuitBreaker.Call(call)
	} else {
		err = call()
	}
	if err != nil {
		m.logger.Warn("request failed",
			zap.String("request_id", req.ID),
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Error(err))
		req.ErrorCh <- err
		return
	}

	m.logger.Debug("request completed",
		zap.String("request_id", req.ID),
		zap.Duration("elapsed", time.Since(startTime)))
	req.ResponseCh <- resp
}

// executeHTTPRequest performs the actual HTTP call
func (m *Manager) executeHTTPRequest(ctx context.Context, req *Request) (*Response, error) {
	jsonData, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	}

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}

// GetMetrics returns current queue statistics
func (m *Manager) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := m.metrics
	metrics.CurrentQueueDepth = map[Priority]int{
		PriorityCritical:   len(m.criticalQueue),
		PriorityBackground: len(m.backgroundQueue),
	}
	return metrics
}

// Stop shuts down the dispatcher and waits for in-flight requests.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
		m.httpClient.CloseIdleConnections()
		m.logger.Info("stopped")
	})
}
