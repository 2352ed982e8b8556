// Package model reads factor-graph descriptions from YAML and builds
// discrete models from them.
//
// A model file names its variables with their domain sizes, optional unary
// tables (one row per site), the edges of the tree with their potentials,
// and optional observations:
//
//	sites: 2
//	variables:
//	  - name: A
//	    states: 2
//	    unary: [[1, 1], [1, 3]]
//	  - name: B
//	    states: 2
//	edges:
//	  - from: A
//	    to: B
//	    potential: [[2, 1], [1, 2]]   # states(A) rows × states(B) columns
//	observations:
//	  - variable: B
//	    states: [1, -1]               # per site; -1 leaves a site free
package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/matrix"
)

var (
	// ErrInvalidSpec wraps every structural problem found by Validate.
	ErrInvalidSpec = errors.New("model: invalid model description")

	// ErrParse indicates malformed YAML.
	ErrParse = errors.New("model: cannot parse model description")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Spec is the file-level description of a model.
type Spec struct {
	Sites        int           `yaml:"sites" validate:"gte=0"`
	Variables    []Variable    `yaml:"variables" validate:"required,min=1,unique=Name,dive"`
	Edges        []Edge        `yaml:"edges" validate:"dive"`
	Observations []Observation `yaml:"observations" validate:"dive"`
}

// Variable declares one vertex.
type Variable struct {
	Name   string      `yaml:"name" validate:"required"`
	States int         `yaml:"states" validate:"required,gt=0"`
	Unary  [][]float64 `yaml:"unary" validate:"omitempty,dive,min=1,dive,gte=0"`
}

// Edge connects two variables with a potential indexed [from][to].
type Edge struct {
	From      string      `yaml:"from" validate:"required"`
	To        string      `yaml:"to" validate:"required,nefield=From"`
	Potential [][]float64 `yaml:"potential" validate:"required,min=1,dive,min=1,dive,gte=0"`
}

// Observation clamps a variable to one state per site.
type Observation struct {
	Variable string `yaml:"variable" validate:"required"`
	States   []int  `yaml:"states" validate:"required,min=1,dive,gte=-1"`
}

// Parse decodes and validates a YAML model description. Unknown keys are
// rejected.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Spec
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Load reads and parses the model file at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", path, err)
	}

	return s, nil
}

// Validate checks the struct tags. Cross-references (edge endpoints,
// table shapes) are checked by Build.
func (s *Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	return nil
}

// Build assembles the discrete model: variables in file order, then
// unaries, edges and observations.
func (s *Spec) Build() (*discrete.Model[string], error) {
	m := discrete.NewModel[string]()
	if s.Sites > 0 {
		if err := m.FixSites(s.Sites); err != nil {
			return nil, err
		}
	}

	for _, v := range s.Variables {
		if err := m.AddVariable(v.Name, v.States); err != nil {
			return nil, fmt.Errorf("model: variable %q: %w", v.Name, err)
		}
	}
	for _, v := range s.Variables {
		if v.Unary == nil {
			continue
		}
		if err := m.SetUnary(v.Name, v.Unary); err != nil {
			return nil, fmt.Errorf("model: unary of %q: %w", v.Name, err)
		}
	}
	for i, e := range s.Edges {
		pot, err := matrix.NewDenseFrom(e.Potential)
		if err != nil {
			return nil, fmt.Errorf("model: edge %d (%s-%s): %w", i, e.From, e.To, err)
		}
		if err = m.AddPotential(e.From, e.To, pot); err != nil {
			return nil, fmt.Errorf("model: edge %d (%s-%s): %w", i, e.From, e.To, err)
		}
	}
	for _, o := range s.Observations {
		if err := m.ObserveStates(o.Variable, o.States); err != nil {
			return nil, fmt.Errorf("model: observation of %q: %w", o.Variable, err)
		}
	}

	return m, nil
}
