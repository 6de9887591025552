// Package statsd reports world timings and event counts to a datadog agent. Until Start is called every
// report goes to a no-op client.
package statsd

import (
	"sync"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

const (
	namespace = "nucleus."

	systemMetric     = "system.duration"
	matchedMetric    = "system.matched"
	worldTickMetric  = "world.tick.duration"
	loopTickMetric   = "loop.tick.duration"
	publishedMetric  = "event.published"
	subscribedMetric = "event.subscribers"
)

var (
	mu     sync.RWMutex
	client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}
)

func Client() ddstatsd.ClientInterface {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// SetClient replaces the reporting client. Passing nil restores the no-op client.
func SetClient(c ddstatsd.ClientInterface) {
	if c == nil {
		c = &ddstatsd.NoOpClient{}
	}
	mu.Lock()
	client = c
	mu.Unlock()
}

// report logs a failed emission. Metrics are best effort and never fail a tick.
func report(metric string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("metric", metric).Msg("failed to emit metric")
	}
}

// SystemRan records how long one system took and how many entities it was handed.
func SystemRan(system string, start time.Time, matched int) {
	tags := []string{"system:" + system}
	c := Client()
	report(systemMetric, c.Timing(systemMetric, time.Since(start), tags, 1))
	report(matchedMetric, c.Gauge(matchedMetric, float64(matched), tags, 1))
}

// WorldTicked records the duration of a full World update.
func WorldTicked(start time.Time) {
	report(worldTickMetric, Client().Timing(worldTickMetric, time.Since(start), nil, 1))
}

// LoopTicked records the duration of a tick as seen by the driver, lock wait included.
func LoopTicked(start time.Time) {
	report(loopTickMetric, Client().Timing(loopTickMetric, time.Since(start), nil, 1))
}

// EventPublished counts one published event and the handlers it reached.
func EventPublished(kind string, subscribers int) {
	tags := []string{"kind:" + kind}
	c := Client()
	report(publishedMetric, c.Incr(publishedMetric, tags, 1))
	report(subscribedMetric, c.Histogram(subscribedMetric, float64(subscribers), tags, 1))
}

// Start connects the reporting client to the agent at address. tags are added to every metric.
func Start(address string, tags []string) error {
	if address == "" {
		return eris.New("statsd address must not be empty")
	}
	opts := []ddstatsd.Option{ddstatsd.WithNamespace(namespace), ddstatsd.WithoutTelemetry()}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}
	c, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrapf(err, "failed to connect to statsd agent at %s", address)
	}
	SetClient(c)
	return nil
}

// Close flushes and closes the reporting client, leaving the no-op client in its place.
func Close() error {
	mu.Lock()
	c := client
	client = &ddstatsd.NoOpClient{}
	mu.Unlock()
	return c.Close()
}
