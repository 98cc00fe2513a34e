package internal

import (
	"fmt"
	"sort"

	"github.com/rcrowley/go-metrics"
)

// Metrics is a named set of pipeline counters.
type Metrics struct {
	registry metrics.Registry
}

func NewMetrics() *Metrics {
	return &Metrics{registry: metrics.NewRegistry()}
}

// Counter returns the counter subsystem_name, creating it on first use.
func (m *Metrics) Counter(subsystem, name string) metrics.Counter {
	return metrics.GetOrRegisterCounter(fmt.Sprintf("%s_%s", subsystem, name), m.registry)
}

// Counters returns the current value of every counter.
func (m *Metrics) Counters() map[string]int64 {
	out := make(map[string]int64)
	m.registry.Each(func(name string, i interface{}) {
		if c, ok := i.(metrics.Counter); ok {
			out[name] = c.Count()
		}
	})
	return out
}

// Names returns the counter names, sorted.
func (m *Metrics) Names() []string {
	var names []string
	for name := range m.Counters() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
