package scheduler

import "time"

// Config controls sweep cadence and thresholds.
type Config struct {
	SweepInterval time.Duration
	IdleThreshold time.Duration
	JobTimeout    time.Duration

	// SweepBatch caps how many carts one store sweep abandons per round;
	// the remainder is picked up on the next tick.
	SweepBatch int
}

func DefaultConfig() Config {
	return Config{
		SweepInterval: time.Minute,
		IdleThreshold: 30 * time.Minute,
		JobTimeout:    30 * time.Second,
		SweepBatch:    100,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaults.SweepInterval
	}
	if c.IdleThreshold <= 0 {
		c.IdleThreshold = defaults.IdleThreshold
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.SweepBatch <= 0 {
		c.SweepBatch = defaults.SweepBatch
	}
	return c
}
