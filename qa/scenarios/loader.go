package scenarios

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/trikesim/core/geo"
)

// Coord is a [lon, lat] pair.
type Coord []float64

// Point converts c, which must hold exactly two values.
func (c Coord) Point() (geo.Point, error) {
	if len(c) != 2 {
		return geo.Point{}, fmt.Errorf("coordinate %v: want [lon, lat]", []float64(c))
	}
	return geo.NewPoint(c[0], c[1]), nil
}

type TerminalDef struct {
	ID       string `yaml:"id"`
	Location Coord  `yaml:"location"`
	Capacity int    `yaml:"capacity"`
}

type TricycleDef struct {
	ID    string `yaml:"id"`
	Start Coord  `yaml:"start"`
	// Terminal parks the vehicle; otherwise it roams.
	Terminal string `yaml:"terminal,omitempty"`
	// Roam lists the roam cycle checkpoints of a roaming vehicle.
	Roam []Coord `yaml:"roam,omitempty"`
}

type PassengerDef struct {
	ID   string `yaml:"id"`
	Src  Coord  `yaml:"src"`
	Dest Coord  `yaml:"dest"`
	// Terminal queues the passenger there; Src defaults to its location.
	Terminal   string `yaml:"terminal,omitempty"`
	CreateTime int64  `yaml:"create_time,omitempty"`
}

type VehicleTemplate struct {
	Capacity    int     `yaml:"capacity"`
	Speed       float64 `yaml:"speed"`
	MaxCycles   int     `yaml:"max_cycles"`
	Scheduler   string  `yaml:"scheduler"`
	ClaimPolicy string  `yaml:"claim_policy"`
}

type Expected struct {
	Completed         *int              `yaml:"completed,omitempty"`
	MinCompletionRate float64           `yaml:"min_completion_rate,omitempty"`
	Statuses          map[string]string `yaml:"statuses,omitempty"`
}

type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Horizon     int64           `yaml:"horizon"`
	Tricycle    VehicleTemplate `yaml:"tricycle"`
	Terminals   []TerminalDef   `yaml:"terminals"`
	Tricycles   []TricycleDef   `yaml:"tricycles"`
	Passengers  []PassengerDef  `yaml:"passengers"`
	Expected    Expected        `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, errors.New("scenario: name is required")
	}
	return &sc, nil
}
