package llm

import "time"

// Config controls queue and client behavior
type Config struct {
	// Endpoint
	Model  string
	URL    string
	APIKey string

	// Concurrency control
	MaxConcurrent int

	// Queue sizes
	CriticalQueueSize   int
	BackgroundQueueSize int

	// Timeouts
	CriticalTimeout   time.Duration
	BackgroundTimeout time.Duration

	// Rate limit on completions per second, 0 disables it
	RateLimit float64
	Burst     int

	// Circuit breaker
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent:       2,
		CriticalQueueSize:   20,
		BackgroundQueueSize: 100,
		CriticalTimeout:     30 * time.Second,
		BackgroundTimeout:   120 * time.Second,
		RateLimit:           5,
		Burst:               10,
		BreakerThreshold:    3,
		BreakerCooldown:     time.Minute,
	}
}
