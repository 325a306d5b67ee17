package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures infections, departures and quarantine changes.
	TraceLevelEvents TraceLevel = "events"
)

// ReasonReleased marks a quarantine release in QuarantineRecord.Reason.
const ReasonReleased = "released"

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether the config records anything.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelEvents
}

// SimulationTrace collects event records during one round.
type SimulationTrace struct {
	Config      TraceConfig
	Round       int
	Infections  []InfectionRecord
	Transports  []TransportRecord
	Quarantines []QuarantineRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig, round int) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Round:       round,
		Infections:  make([]InfectionRecord, 0),
		Transports:  make([]TransportRecord, 0),
		Quarantines: make([]QuarantineRecord, 0),
	}
}

// RecordInfection appends an infection record. Safe on a nil trace.
func (st *SimulationTrace) RecordInfection(record InfectionRecord) {
	if st == nil {
		return
	}
	st.Infections = append(st.Infections, record)
}

// RecordTransport appends a departure record. Safe on a nil trace.
func (st *SimulationTrace) RecordTransport(record TransportRecord) {
	if st == nil {
		return
	}
	st.Transports = append(st.Transports, record)
}

// RecordQuarantine appends a quarantine record. Safe on a nil trace.
func (st *SimulationTrace) RecordQuarantine(record QuarantineRecord) {
	if st == nil {
		return
	}
	st.Quarantines = append(st.Quarantines, record)
}
