package trace

// TraceSummary aggregates statistics from one or more SimulationTraces.
type TraceSummary struct {
	Rounds                 int
	TotalInfections        int
	InfectionsByPopulation map[int]int // population id → infections inside it
	MeanProbability        float64     // mean transmission probability over applied infections
	TopSpreader            int         // agent id with most infections in a single round, -1 if none
	TopSpreaderCount       int
	Departures             int
	TransportedAgents      int
	MaxBatch               int
	QuarantinesByReason    map[string]int // reason → record count
}

// Summarize computes aggregate statistics from traces.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(traces ...*SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		InfectionsByPopulation: make(map[int]int),
		QuarantinesByReason:    make(map[string]int),
		TopSpreader:            -1,
	}

	totalProb := 0.0
	for _, st := range traces {
		if st == nil {
			continue
		}
		summary.Rounds++

		spread := make(map[int]int)
		for _, inf := range st.Infections {
			summary.TotalInfections++
			summary.InfectionsByPopulation[inf.Population]++
			totalProb += inf.Probability
			spread[inf.Infector]++
		}
		for id, n := range spread {
			if n > summary.TopSpreaderCount || (n == summary.TopSpreaderCount && id < summary.TopSpreader) {
				summary.TopSpreader = id
				summary.TopSpreaderCount = n
			}
		}

		for _, tr := range st.Transports {
			summary.Departures++
			summary.TransportedAgents += len(tr.AgentIDs)
			if len(tr.AgentIDs) > summary.MaxBatch {
				summary.MaxBatch = len(tr.AgentIDs)
			}
		}

		for _, q := range st.Quarantines {
			summary.QuarantinesByReason[q.Reason]++
		}
	}

	if summary.TotalInfections > 0 {
		summary.MeanProbability = totalProb / float64(summary.TotalInfections)
	}
	return summary
}
