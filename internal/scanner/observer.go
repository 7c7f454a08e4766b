package scanner

import "github.com/aleister1102/scriptscan/internal/models"

// OutcomeObserver is notified of every host outcome, in completion order, from the
// single aggregating goroutine.
type OutcomeObserver interface {
	OnOutcome(outcome models.ScanOutcome)
}

// ObserverFunc adapts a function to OutcomeObserver.
type ObserverFunc func(outcome models.ScanOutcome)

// OnOutcome calls f(outcome).
func (f ObserverFunc) OnOutcome(outcome models.ScanOutcome) {
	f(outcome)
}

// MultiObserver fans an outcome out to several observers.
type MultiObserver []OutcomeObserver

// OnOutcome notifies each non-nil observer in order.
func (m MultiObserver) OnOutcome(outcome models.ScanOutcome) {
	for _, observer := range m {
		if observer != nil {
			observer.OnOutcome(outcome)
		}
	}
}
