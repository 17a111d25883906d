package metrics

// Metrics records league-cycle activity. Decouples use cases from Prometheus.
type Metrics interface {
	IncPairingTransition(action, state string)
	IncSubstitution(status string)
	IncRejected(operation, reason string)
	IncWeekFinalized()
	AddLedgerRows(ledger string, n int)
	ObserveFinalizeDuration(seconds float64)
}

// Nop discards every measurement.
type Nop struct{}

var _ Metrics = Nop{}

func (Nop) IncPairingTransition(string, string) {}
func (Nop) IncSubstitution(string)              {}
func (Nop) IncRejected(string, string)          {}
func (Nop) IncWeekFinalized()                   {}
func (Nop) AddLedgerRows(string, int)           {}
func (Nop) ObserveFinalizeDuration(float64)     {}
