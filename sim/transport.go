package sim

// TransportLink is the periodic train from one city's station to another city.
type TransportLink struct {
	From *Population
	To   *Population
}

// Run departs every agent standing in the origin station and merges the batch
// into the destination. Returns the batch (possibly empty).
func (l TransportLink) Run() []*Agent {
	batch := Depart(l.From)
	Arrive(l.To, batch)
	return batch
}

// Depart partitions origin into agents outside the station (who stay) and
// agents inside it (who board). The origin keeps a fresh slice of stays; the
// boarding agents are returned. The station test alone decides the batch size.
func Depart(origin *Population) []*Agent {
	stays := make([]*Agent, 0, len(origin.Agents))
	var departs []*Agent
	for _, a := range origin.Agents {
		if origin.InStation(a) {
			departs = append(departs, a)
		} else {
			stays = append(stays, a)
		}
	}
	origin.Agents = stays
	return departs
}

// Arrive adds batch to destination and updates each agent's current population.
func Arrive(destination *Population, batch []*Agent) {
	for _, a := range batch {
		a.CurrentPopulation = destination.ID
	}
	destination.Agents = append(destination.Agents, batch...)
}

// AgentIDs lists the ids of a batch in order.
func AgentIDs(batch []*Agent) []int {
	ids := make([]int, len(batch))
	for i, a := range batch {
		ids[i] = a.ID
	}
	return ids
}
