package sim

// smallConfig returns a valid configuration small enough for full rounds in tests.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Area = AreaConfig{MaxX: 60, MaxY: 60, StationX: 15, StationY: 15}
	cfg.Origin = PopulationConfig{Size: 25, InfectionRate: 0.2, MaskedRate: 0.3}
	cfg.Destination = PopulationConfig{Size: 25, InfectionRate: 0.05, MaskedRate: 0.3}
	cfg.Disease.SymptomPeriod = 20
	cfg.Disease.VirusActivePeriod = 50
	cfg.Disease.QuarantinePeriod = 70
	cfg.Horizon = 200
	cfg.DepartureInterval = 20
	cfg.ProgressInterval = 0
	cfg.Rounds = 2
	cfg.IDOffset = 1000
	return cfg
}

// testPopulation builds a population in the default 500x500 area holding agents.
func testPopulation(id PopulationID, agents ...*Agent) *Population {
	p := &Population{
		ID:       id,
		MaxX:     500,
		MaxY:     500,
		StationX: 100,
		StationY: 100,
		Agents:   agents,
	}
	for _, a := range agents {
		if a.HomePopulation == id {
			p.HomeSize++
		}
		a.CurrentPopulation = id
	}
	return p
}

// healthyAgent creates an uninfected, unmasked, symptomatic-if-infected agent at (x, y).
func healthyAgent(id int, home PopulationID, x, y float64) *Agent {
	return NewAgent(id, false, false, true, home, x, y, 6)
}

// activeAgent creates an agent infected at step 0 at (x, y).
func activeAgent(id int, home PopulationID, x, y float64) *Agent {
	return NewAgent(id, true, false, true, home, x, y, 6)
}
