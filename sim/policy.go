package sim

import "fmt"

// Scenario is the border-control policy of a run. Values match the scenario codes
// accepted in configuration files.
type Scenario int

const (
	// ScenarioUnrestricted never quarantines anyone.
	ScenarioUnrestricted Scenario = 1
	// ScenarioSymptomaticQuarantine quarantines detected agents in the destination.
	ScenarioSymptomaticQuarantine Scenario = 2
	// ScenarioTravelerQuarantine adds quarantine of every arriving traveler.
	ScenarioTravelerQuarantine Scenario = 3
)

// AllScenarios lists the scenarios in code order.
var AllScenarios = []Scenario{ScenarioUnrestricted, ScenarioSymptomaticQuarantine, ScenarioTravelerQuarantine}

var scenarioNames = map[Scenario]string{
	ScenarioUnrestricted:          "unrestricted",
	ScenarioSymptomaticQuarantine: "symptomatic-quarantine",
	ScenarioTravelerQuarantine:    "traveler-quarantine",
}

// IsValidScenario returns true if s is a recognized scenario code.
func IsValidScenario(s Scenario) bool {
	_, ok := scenarioNames[s]
	return ok
}

func (s Scenario) String() string {
	if name, ok := scenarioNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scenario(%d)", int(s))
}

// Quarantine reasons reported by PolicyController.
const (
	ReasonSymptomatic = "symptomatic"
	ReasonTraveler    = "traveler"
)

// PolicyController decides quarantine placement in the destination city.
// Release is not a policy decision; Population.UpdateQuarantine handles it
// for every scenario.
type PolicyController struct {
	scenario Scenario
}

// NewPolicyController creates a controller for scenario.
// Panics on unrecognized scenarios; Config.Validate rejects them earlier.
func NewPolicyController(scenario Scenario) *PolicyController {
	if !IsValidScenario(scenario) {
		panic(fmt.Sprintf("unknown scenario %d", scenario))
	}
	return &PolicyController{scenario: scenario}
}

// Scenario returns the controller's scenario.
func (pc *PolicyController) Scenario() Scenario {
	return pc.scenario
}

// OnArrival runs right after a transport batch is merged into destination.
// Under ScenarioTravelerQuarantine every arriving agent is quarantined by id,
// independent of infection state. Returns the quarantined ids.
func (pc *PolicyController) OnArrival(destination *Population, batch []*Agent, step int) []int {
	if pc.scenario != ScenarioTravelerQuarantine {
		return nil
	}
	return destination.QuarantineIDs(step, AgentIDs(batch))
}

// AfterDetection runs after each step's symptom sweep. Under
// ScenarioSymptomaticQuarantine and ScenarioTravelerQuarantine every detected
// agent in destination is quarantined. Returns the newly quarantined ids.
func (pc *PolicyController) AfterDetection(destination *Population, step int) []int {
	if pc.scenario == ScenarioUnrestricted {
		return nil
	}
	return destination.QuarantineDetected(step)
}
