package multisample

import "fmt"

// Notifier is where readers and writers report progress and recovered
// problems. Library code never logs on its own; the caller decides whether
// messages go to a logger, a UI or a test collector.
type Notifier interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// NopNotifier discards all messages.
type NopNotifier struct{}

func (NopNotifier) Info(string, ...interface{}) {}
func (NopNotifier) Warn(string, ...interface{}) {}

// Collector records messages, used to surface per-zone warnings to the
// conversion driver and by tests.
type Collector struct {
	Infos    []string
	Warnings []string
}

func (c *Collector) Info(format string, args ...interface{}) {
	c.Infos = append(c.Infos, fmt.Sprintf(format, args...))
}

func (c *Collector) Warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}
