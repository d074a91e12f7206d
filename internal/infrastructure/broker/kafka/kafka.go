// Package kafka owns the broker edge of the service: the long-lived consumer
// connection with its retry/cooldown state machine, the dead-letter and
// domain-event publishers, and a short-lived reachability probe.
package kafka

import "time"

const (
	defaultMaxRetries    = 5
	defaultRetryDelay    = 5 * time.Second
	defaultCooldownDelay = time.Minute
	defaultDialTimeout   = 10 * time.Second
)

// Config captures the settings shared by the consumer, publishers, and probe.
type Config struct {
	Brokers []string
	GroupID string
	// Topics are consumed from the earliest offset on first subscription.
	Topics []string
	// MaxRetries bounds reconnect attempts before entering cooldown.
	MaxRetries int
	// RetryDelay is the fixed delay between reconnect attempts.
	RetryDelay time.Duration
	// CooldownDelay is the longer sleep after MaxRetries failed attempts.
	// The supervisor loops back to connecting afterwards; it never gives up.
	CooldownDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.CooldownDelay <= 0 {
		c.CooldownDelay = defaultCooldownDelay
	}
	return c
}
