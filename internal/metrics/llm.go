package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"animai/internal/llm"
)

// llmCollector reads the completion queue counters on every scrape.
type llmCollector struct {
	manager *llm.Manager
	breaker *llm.CircuitBreaker

	processed *prometheus.Desc
	dropped   *prometheus.Desc
	depth     *prometheus.Desc
	open      *prometheus.Desc
}

// RegisterLLM exports queue and circuit breaker state of the completion
// client. breaker may be nil.
func (m *Metrics) RegisterLLM(manager *llm.Manager, breaker *llm.CircuitBreaker) error {
	return m.Registry.Register(&llmCollector{
		manager: manager,
		breaker: breaker,
		processed: prometheus.NewDesc(namespace+"_llm_requests_processed_total",
			"Completion requests processed, by priority.", []string{"priority"}, nil),
		dropped: prometheus.NewDesc(namespace+"_llm_requests_dropped_total",
			"Completion requests rejected because the queue was full.", []string{"priority"}, nil),
		depth: prometheus.NewDesc(namespace+"_llm_queue_depth",
			"Completion requests waiting, by priority.", []string{"priority"}, nil),
		open: prometheus.NewDesc(namespace+"_llm_breaker_open",
			"1 while the completion circuit breaker rejects calls.", nil, nil),
	})
}

func (c *llmCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.processed
	ch <- c.dropped
	ch <- c.depth
	ch <- c.open
}

func (c *llmCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.manager.GetMetrics()
	crit, bg := llm.PriorityCritical.String(), llm.PriorityBackground.String()
	ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(s.CriticalProcessed), crit)
	ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(s.BackgroundProcessed), bg)
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.CriticalDropped), crit)
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.BackgroundDropped), bg)
	ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(s.CurrentQueueDepth[llm.PriorityCritical]), crit)
	ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(s.CurrentQueueDepth[llm.PriorityBackground]), bg)

	open := 0.0
	if c.breaker != nil && c.breaker.State() == llm.StateOpen {
		open = 1
	}
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, open)
}
