package types

// This file defines how the cache reports what it is doing.

/*
Metrics receives an event for every interesting moment in an engine's
lifecycle. Engines call these methods; what happens next (counters, a metrics
backend, nothing) is the implementation's business.
*/
type Metrics interface {

	// Hit is called when a Get returns a stored, still-valid value.
	Hit()

	// Miss is called when a Get finds nothing usable for the key.
	Miss()

	// Expire is called when a Get finds an entry past its expiry and lazily
	// removes it. Every Expire is followed by a Miss for the same Get.
	Expire()
}

/*
NoopMetrics is the default Metrics implementation. It ignores every event.

Engines substitute it for a nil Metrics at construction time so the rest of
the code never has to nil-check before recording an event.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()    {}
func (NoopMetrics) Miss()   {}
func (NoopMetrics) Expire() {}
