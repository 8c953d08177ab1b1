// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter tracks a monotonically increasing count, mirrored into a
// prometheus.Counter registered under the same name.
type Counter interface {
	Inc()
	Add(delta int64)
	Read() int64
}

// counter implements Counter
type counter struct {
	mu    sync.RWMutex
	value int64
	prom  prometheus.Counter
}

// Inc increments the counter by 1
func (c *counter) Inc() {
	c.Add(1)
}

// Add adds delta to the counter
func (c *counter) Add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	if c.prom != nil && delta > 0 {
		c.prom.Add(float64(delta))
	}
}

// Read returns the current count
func (c *counter) Read() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Gauge tracks a value that can go up or down, mirrored into a
// prometheus.Gauge registered under the same name.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
	Read() float64
}

// gauge implements Gauge
type gauge struct {
	mu    sync.RWMutex
	value float64
	prom  prometheus.Gauge
}

// Set sets the gauge to a specific value
func (g *gauge) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
	if g.prom != nil {
		g.prom.Set(value)
	}
}

// Add adds delta to the gauge
func (g *gauge) Add(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += delta
	if g.prom != nil {
		g.prom.Add(delta)
	}
}

// Read returns the current value
func (g *gauge) Read() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Registry creates named counters/gauges, each backed by a registered
// prometheus collector.
type Registry interface {
	NewCounter(name string) Counter
	NewGauge(name string) Gauge
}

// registry implements Registry
type registry struct {
	reg prometheus.Registerer
}

// NewRegistry returns a Registry that registers its collectors against
// reg. With no argument, it creates its own private prometheus.Registry
// rather than polluting the global DefaultRegisterer.
func NewRegistry(reg ...prometheus.Registerer) Registry {
	if len(reg) == 0 || reg[0] == nil {
		return &registry{reg: prometheus.NewRegistry()}
	}
	return &registry{reg: reg[0]}
}

// NewCounter creates and registers a new counter. A name collision with
// an already-registered collector is tolerated: the counter still tracks
// its value locally even if the prometheus.Counter is left unregistered.
func (r *registry) NewCounter(name string) Counter {
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: "jam engine counter " + name})
	if err := r.reg.Register(pc); err != nil {
		pc = nil
	}
	return &counter{prom: pc}
}

// NewGauge creates and registers a new gauge, the Gauge counterpart of
// NewCounter.
func (r *registry) NewGauge(name string) Gauge {
	pg := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: "jam engine gauge " + name})
	if err := r.reg.Register(pg); err != nil {
		pg = nil
	}
	return &gauge{prom: pg}
}
