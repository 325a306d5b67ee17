package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// AreaConfig groups the city limits shared by both populations.
type AreaConfig struct {
	MaxX     float64 `yaml:"max_x"`     // city limit X (must be >= 2*step_radius)
	MaxY     float64 `yaml:"max_y"`     // city limit Y (must be >= 2*step_radius)
	StationX float64 `yaml:"station_x"` // station limit X, measured from the origin corner
	StationY float64 `yaml:"station_y"` // station limit Y, measured from the origin corner
}

// PopulationConfig groups the initial conditions of one city.
type PopulationConfig struct {
	Size          int     `yaml:"size"`                // initial resident count (>= 0)
	InfectionRate float64 `yaml:"init_infection_rate"` // probability a resident starts infected
	MaskedRate    float64 `yaml:"masked_rate"`         // probability a resident wears a mask
}

// DiseaseConfig groups the fixed disease windows and spatial radii.
type DiseaseConfig struct {
	SymptomProbability float64 `yaml:"show_symptom_probability"` // probability an infection becomes symptomatic
	SymptomPeriod      int     `yaml:"show_symptom_period"`      // steps from infection to detection
	VirusActivePeriod  int     `yaml:"virus_active_period"`      // steps from infection to deactivation
	QuarantinePeriod   int     `yaml:"quarantine_period"`        // steps a quarantine lasts
	ContactRadius      float64 `yaml:"contact_radius"`           // pairs closer than this are in contact
	StepRadius         float64 `yaml:"step_radius"`              // displacement per step
}

// TransmissionTable holds per-contact transmission probabilities.
// Mask entries are keyed infector_target.
type TransmissionTable struct {
	MaskedMasked     float64 `yaml:"masked_masked"`
	MaskedUnmasked   float64 `yaml:"masked_unmasked"`
	UnmaskedMasked   float64 `yaml:"unmasked_masked"`
	UnmaskedUnmasked float64 `yaml:"unmasked_unmasked"`
	Quarantined      float64 `yaml:"quarantined"` // overrides the mask entries when either party is quarantined
}

// Probability returns the transmission probability for one candidate pair.
func (t TransmissionTable) Probability(infector, target *Agent) float64 {
	if infector.UnderQuarantine || target.UnderQuarantine {
		return t.Quarantined
	}
	switch {
	case infector.Masked && target.Masked:
		return t.MaskedMasked
	case infector.Masked:
		return t.MaskedUnmasked
	case target.Masked:
		return t.UnmaskedMasked
	default:
		return t.UnmaskedUnmasked
	}
}

// Config is the immutable input of a Monte Carlo run.
// Loaded from YAML via LoadConfig(path) or built from DefaultConfig().
type Config struct {
	Area         AreaConfig        `yaml:"area"`
	Origin       PopulationConfig  `yaml:"origin"`
	Destination  PopulationConfig  `yaml:"destination"`
	Disease      DiseaseConfig     `yaml:"disease"`
	Transmission TransmissionTable `yaml:"transmission"`

	Horizon           int       `yaml:"horizon"`            // steps per round
	DepartureInterval int       `yaml:"departure_interval"` // steps between trains; must divide horizon
	ProgressInterval  int       `yaml:"progress_interval"`  // steps between progress logs (0 = off)
	Rounds            int       `yaml:"rounds"`             // Monte Carlo rounds
	Workers           int       `yaml:"workers"`            // concurrent rounds (0 = GOMAXPROCS)
	Scenario          Scenario  `yaml:"scenario"`           // 1, 2 or 3
	RateBasis         RateBasis `yaml:"rate_basis"`         // "home" (default) or "current"
	IDOffset          int       `yaml:"id_offset"`          // first agent id of the destination city
	Seed              int64     `yaml:"seed"`
}

// DefaultConfig returns the reference twin-city setup.
func DefaultConfig() Config {
	return Config{
		Area: AreaConfig{MaxX: 500, MaxY: 500, StationX: 100, StationY: 100},
		Origin: PopulationConfig{
			Size:          100,
			InfectionRate: 0.1,
			MaskedRate:    0.5,
		},
		Destination: PopulationConfig{
			Size:          100,
			InfectionRate: 0.01,
			MaskedRate:    0.5,
		},
		Disease: DiseaseConfig{
			SymptomProbability: 0.7,
			SymptomPeriod:      360,
			VirusActivePeriod:  840,
			QuarantinePeriod:   1200,
			ContactRadius:      6,
			StepRadius:         6,
		},
		Transmission: TransmissionTable{
			MaskedMasked:     0.02,
			MaskedUnmasked:   0.05,
			UnmaskedMasked:   0.2,
			UnmaskedUnmasked: 0.6,
			Quarantined:      0.005,
		},
		Horizon:           3000,
		DepartureInterval: 200,
		ProgressInterval:  1000,
		Rounds:            30,
		Scenario:          ScenarioTravelerQuarantine,
		RateBasis:         RateBasisHome,
		IDOffset:          10000,
		Seed:              42,
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig().
// Uses strict parsing: unrecognized keys (typos) are rejected.
// The result is not validated; call Validate.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// YAML renders the configuration in the same format LoadConfig reads.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Checkpoints returns the number of checkpoints a round records.
func (c Config) Checkpoints() int {
	if c.DepartureInterval <= 0 {
		return 0
	}
	return c.Horizon / c.DepartureInterval
}

// Validate checks every field; errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) validate() error {
	d := c.Disease
	if err := validateFinitePositive("disease.step_radius", d.StepRadius); err != nil {
		return err
	}
	if err := validateFinitePositive("disease.contact_radius", d.ContactRadius); err != nil {
		return err
	}
	periods := []struct {
		name string
		val  int
	}{
		{"disease.show_symptom_period", d.SymptomPeriod},
		{"disease.virus_active_period", d.VirusActivePeriod},
		{"disease.quarantine_period", d.QuarantinePeriod},
	}
	for _, p := range periods {
		if p.val <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.val)
		}
	}

	a := c.Area
	if err := validateFinitePositive("area.max_x", a.MaxX); err != nil {
		return err
	}
	if err := validateFinitePositive("area.max_y", a.MaxY); err != nil {
		return err
	}
	if a.MaxX < 2*d.StepRadius || a.MaxY < 2*d.StepRadius {
		return fmt.Errorf("area %gx%g must be at least twice disease.step_radius (%g) on each side",
			a.MaxX, a.MaxY, d.StepRadius)
	}
	if a.StationX < 0 || a.StationX > a.MaxX || a.StationY < 0 || a.StationY > a.MaxY {
		return fmt.Errorf("station %gx%g must lie within area %gx%g", a.StationX, a.StationY, a.MaxX, a.MaxY)
	}

	probs := []struct {
		name string
		val  float64
	}{
		{"origin.init_infection_rate", c.Origin.InfectionRate},
		{"origin.masked_rate", c.Origin.MaskedRate},
		{"destination.init_infection_rate", c.Destination.InfectionRate},
		{"destination.masked_rate", c.Destination.MaskedRate},
		{"disease.show_symptom_probability", d.SymptomProbability},
		{"transmission.masked_masked", c.Transmission.MaskedMasked},
		{"transmission.masked_unmasked", c.Transmission.MaskedUnmasked},
		{"transmission.unmasked_masked", c.Transmission.UnmaskedMasked},
		{"transmission.unmasked_unmasked", c.Transmission.UnmaskedUnmasked},
		{"transmission.quarantined", c.Transmission.Quarantined},
	}
	for _, p := range probs {
		if err := validateProbability(p.name, p.val); err != nil {
			return err
		}
	}

	if c.Origin.Size < 0 {
		return fmt.Errorf("origin.size must be non-negative, got %d", c.Origin.Size)
	}
	if c.Destination.Size < 0 {
		return fmt.Errorf("destination.size must be non-negative, got %d", c.Destination.Size)
	}
	if c.IDOffset < c.Origin.Size {
		return fmt.Errorf("id_offset (%d) must be >= origin.size (%d) to keep agent ids unique", c.IDOffset, c.Origin.Size)
	}

	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.DepartureInterval <= 0 {
		return fmt.Errorf("departure_interval must be positive, got %d", c.DepartureInterval)
	}
	if c.Horizon%c.DepartureInterval != 0 {
		return fmt.Errorf("departure_interval (%d) must divide horizon (%d)", c.DepartureInterval, c.Horizon)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval must be non-negative, got %d", c.ProgressInterval)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if !IsValidScenario(c.Scenario) {
		return fmt.Errorf("unknown scenario %d; valid: 1 (unrestricted), 2 (symptomatic quarantine), 3 (traveler quarantine)", c.Scenario)
	}
	if !IsValidRateBasis(string(c.RateBasis)) {
		return fmt.Errorf("unknown rate_basis %q; valid: home, current", c.RateBasis)
	}
	return nil
}

func validateProbability(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", name, val)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
