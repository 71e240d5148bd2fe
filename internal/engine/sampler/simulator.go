package sampler

import "NetPulse/internal/engine/counter"

// SentSimulator stands in for a real outbound probe: every tick it counts one packet as
// sent. Loss readings derived from it are a placeholder, not a measurement.
type SentSimulator struct {
	bank *counter.Bank
}

// NewSentSimulator creates a simulator feeding bank.
func NewSentSimulator(bank *counter.Bank) *SentSimulator {
	return &SentSimulator{bank: bank}
}

// Tick increments the sent counter by exactly one.
func (s *SentSimulator) Tick() {
	s.bank.AddSent()
}
