package events

import (
	"errors"

	"github.com/agentpay/flux-ledger/internal/interfaces"
)

// Fanout delivers each event to every configured sink. Delivery is
// best-effort per sink; errors are collected so the caller can log them.
type Fanout struct {
	sinks []interfaces.EventPublisher
}

// NewFanout builds a Fanout over the non-nil sinks. Returns nil when no
// sink is configured, which callers treat as "no event feed".
func NewFanout(sinks ...interfaces.EventPublisher) *Fanout {
	active := make([]interfaces.EventPublisher, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			active = append(active, sink)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return &Fanout{sinks: active}
}

func (f *Fanout) Publish(topic string, event any) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ interfaces.EventPublisher = (*Fanout)(nil)
