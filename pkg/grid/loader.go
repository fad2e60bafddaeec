package grid

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// feetPerMile converts the conductor library's ohms-per-mile resistance
// figures to the per-foot values the thermal model works in.
const feetPerMile = 5280.0

var validate = validator.New()

// TopologyDoc is the YAML document format for the reference topology
// provider. Field constraints are enforced with struct tags before the arena
// is assembled.
type TopologyDoc struct {
	Conductors []ConductorDoc `yaml:"conductors" validate:"dive"`
	Buses      []BusDoc       `yaml:"buses" validate:"required,min=1,dive"`
	Lines      []LineDoc      `yaml:"lines" validate:"required,min=1,dive"`
	Generators []GeneratorDoc `yaml:"generators" validate:"dive"`
	Loads      []LoadDoc      `yaml:"loads" validate:"dive"`
	FlowsMVA   map[string]float64 `yaml:"flows_mva"`
}

// ConductorDoc mirrors a conductor library row. Resistances are ohms/mile and
// the radius is in inches, matching the upstream library conventions.
type ConductorDoc struct {
	Name            string  `yaml:"name" validate:"required"`
	Res25COhmPerMi  float64 `yaml:"res_25c_ohm_per_mile" validate:"gt=0"`
	Res50COhmPerMi  float64 `yaml:"res_50c_ohm_per_mile" validate:"gt=0"`
	CoreRadiusIn    float64 `yaml:"core_radius_in" validate:"gt=0"`
	MOTC            float64 `yaml:"max_operating_temp_c" validate:"omitempty,gte=0"`
	Emissivity      float64 `yaml:"emissivity" validate:"omitempty,gt=0,lte=1"`
	Absorptivity    float64 `yaml:"absorptivity" validate:"omitempty,gt=0,lte=1"`
}

type BusDoc struct {
	ID     string  `yaml:"id" validate:"required"`
	Name   string  `yaml:"name"`
	VNomKV float64 `yaml:"v_nom_kv" validate:"gt=0"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

type LineDoc struct {
	ID        string  `yaml:"id" validate:"required"`
	Bus0      string  `yaml:"bus0" validate:"required"`
	Bus1      string  `yaml:"bus1" validate:"required"`
	R         float64 `yaml:"r" validate:"gte=0"`
	X         float64 `yaml:"x" validate:"gt=0"`
	B         float64 `yaml:"b"`
	SNomMVA   float64 `yaml:"s_nom_mva" validate:"gt=0"`
	Conductor string  `yaml:"conductor"`
	MOTC      float64 `yaml:"mot_c" validate:"omitempty,gte=0"`
}

type GeneratorDoc struct {
	ID     string  `yaml:"id" validate:"required"`
	Bus    string  `yaml:"bus" validate:"required"`
	PSetMW float64 `yaml:"p_set_mw" validate:"gte=0"`
}

type LoadDoc struct {
	ID     string  `yaml:"id" validate:"required"`
	Bus    string  `yaml:"bus" validate:"required"`
	PSetMW float64 `yaml:"p_set_mw" validate:"gte=0"`
}

// LoadTopologyFile reads and assembles an arena from a YAML topology file.
func LoadTopologyFile(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	return LoadTopology(data)
}

// LoadTopology parses a YAML topology document, validates it, and builds the
// arena. Unresolvable conductor references are allowed through (rating
// degrades per line); structural errors are not.
func LoadTopology(data []byte) (*Arena, error) {
	var doc TopologyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}
	return doc.Build()
}

// Build converts the document into an Arena.
func (doc *TopologyDoc) Build() (*Arena, error) {
	conductors := make([]ConductorSpec, 0, len(doc.Conductors))
	for _, c := range doc.Conductors {
		conductors = append(conductors, ConductorSpec{
			Name:              c.Name,
			TLoC:              25,
			THiC:              50,
			RLoOhmPerFt:       c.Res25COhmPerMi / feetPerMile,
			RHiOhmPerFt:       c.Res50COhmPerMi / feetPerMile,
			DiameterIn:        c.CoreRadiusIn * 2,
			MaxOperatingTempC: c.MOTC,
			Emissivity:        c.Emissivity,
			Absorptivity:      c.Absorptivity,
		})
	}

	buses := make([]Bus, 0, len(doc.Buses))
	for _, b := range doc.Buses {
		buses = append(buses, Bus{ID: b.ID, Name: b.Name, VNomKV: b.VNomKV, X: b.X, Y: b.Y})
	}

	lines := make([]LineSpec, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, LineSpec{
			ID: l.ID, Bus0: l.Bus0, Bus1: l.Bus1,
			R: l.R, X: l.X, B: l.B,
			SNomMVA:   l.SNomMVA,
			Conductor: l.Conductor,
			MOTC:      l.MOTC,
		})
	}

	gens := make([]Generator, 0, len(doc.Generators))
	for _, g := range doc.Generators {
		gens = append(gens, Generator{ID: g.ID, Bus: g.Bus, PSetMW: g.PSetMW})
	}

	loads := make([]Load, 0, len(doc.Loads))
	for _, d := range doc.Loads {
		loads = append(loads, Load{ID: d.ID, Bus: d.Bus, PSetMW: d.PSetMW})
	}

	return NewArena(conductors, buses, lines, gens, loads, doc.FlowsMVA)
}
