// Package trace provides event-trace recording for twin-city rounds.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// InfectionRecord captures a single transmission.
type InfectionRecord struct {
	Step        int
	Population  int
	Infector    int
	Target      int
	Probability float64 // transmission probability used for the draw
}

// TransportRecord captures a single train departure, including empty ones.
type TransportRecord struct {
	Step     int
	From     int
	To       int
	AgentIDs []int
}

// QuarantineRecord captures a single quarantine placement or release.
type QuarantineRecord struct {
	Step       int
	Population int
	AgentID    int
	Reason     string // "symptomatic", "traveler" or "released"
}
