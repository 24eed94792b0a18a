package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/faultline-io/faultline/internal/model"
)

// modelDoc mirrors the YAML input document.
//
// The format is flat: gates reference events and other gates by id, and
// the vote field carries the ATLEAST threshold. Probabilities are either
// a constant or an exponential rate; exactly one must be set.
type modelDoc struct {
	Name        string          `yaml:"name"`
	BasicEvents []basicEventDoc `yaml:"basic-events"`
	HouseEvents []houseEventDoc `yaml:"house-events"`
	Gates       []gateDoc       `yaml:"gates"`
	TopEvent    string          `yaml:"top-event"`
}

type basicEventDoc struct {
	ID          string   `yaml:"id"`
	Probability *float64 `yaml:"probability"`
	Lambda      *float64 `yaml:"lambda"`
}

type houseEventDoc struct {
	ID    string `yaml:"id"`
	State bool   `yaml:"state"`
}

type gateDoc struct {
	ID     string   `yaml:"id"`
	Type   string   `yaml:"type"`
	Vote   int      `yaml:"vote"`
	Inputs []string `yaml:"inputs"`
}

// LoadModel reads a YAML model document, populates a Model, and freezes
// it at the given mission time. It is the input-parser collaborator of
// the analysis core: every structural defect surfaces here, before any
// analysis starts.
func LoadModel(path string, missionTime float64) (*model.Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var doc modelDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	return buildModel(&doc, missionTime)
}

// buildModel converts a parsed document into a frozen model.
func buildModel(doc *modelDoc, missionTime float64) (*model.Model, error) {
	name := doc.Name
	if name == "" {
		name = "unnamed"
	}
	m := model.New(name)

	for _, be := range doc.BasicEvents {
		expr, err := expression(be)
		if err != nil {
			return nil, err
		}
		if err := m.AddBasicEvent(model.NewBasicEvent(be.ID, expr)); err != nil {
			return nil, err
		}
	}
	for _, he := range doc.HouseEvents {
		if err := m.AddHouseEvent(model.NewHouseEvent(he.ID, he.State)); err != nil {
			return nil, err
		}
	}
	for _, gd := range doc.Gates {
		typ, ok := model.GateTypeFromString(gd.Type)
		if !ok {
			return nil, fmt.Errorf("gate %q: unknown type %q", gd.ID, gd.Type)
		}
		f := model.NewFormula(typ)
		f.VoteNumber = gd.Vote
		for _, in := range gd.Inputs {
			f.AddEventArg(in)
		}
		if err := m.AddGate(model.NewGate(gd.ID, f)); err != nil {
			return nil, err
		}
	}

	if doc.TopEvent == "" {
		return nil, fmt.Errorf("model %q: no top-event", name)
	}
	if err := m.SetTopEvent(doc.TopEvent); err != nil {
		return nil, err
	}
	if err := m.Freeze(missionTime); err != nil {
		return nil, err
	}
	return m, nil
}

// expression resolves the probability form of one basic event.
func expression(be basicEventDoc) (model.Expression, error) {
	switch {
	case be.Probability != nil && be.Lambda != nil:
		return nil, fmt.Errorf("basic event %q: probability and lambda are mutually exclusive", be.ID)
	case be.Probability != nil:
		return model.Constant(*be.Probability), nil
	case be.Lambda != nil:
		return model.Exponential{Lambda: *be.Lambda}, nil
	default:
		return nil, fmt.Errorf("basic event %q: probability or lambda is required", be.ID)
	}
}
