package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ExperimentType groups experiments for reporting.
type ExperimentType string

const (
	HeadToHead  ExperimentType = "head_to_head"
	Baseline    ExperimentType = "baseline"
	Degradation ExperimentType = "degradation"
	TimeMatched ExperimentType = "time_matched"
)

// ExperimentTypes lists the known types in report order.
var ExperimentTypes = []ExperimentType{TimeMatched, Degradation, Baseline, HeadToHead}

// Experiment is one entry of an experiment matrix.
type Experiment struct {
	ID          string         `yaml:"id"`
	Type        ExperimentType `yaml:"type"`
	Description string         `yaml:"description"`
	White       string         `yaml:"white"`
	Black       string         `yaml:"black"`
	Games       int            `yaml:"games"`
	SwapColors  *bool          `yaml:"swap_colors"`
	MaxPlies    int            `yaml:"max_plies"`
	Seed        uint64         `yaml:"seed"`
}

// Swap reports whether colours alternate between games. Unset means true.
func (e Experiment) Swap() bool {
	return e.SwapColors == nil || *e.SwapColors
}

// Matrix is a list of experiments plus defaults applied to entries that
// leave a field unset.
type Matrix struct {
	Defaults struct {
		Games    int    `yaml:"games"`
		MaxPlies int    `yaml:"max_plies"`
		Seed     uint64 `yaml:"seed"`
	} `yaml:"defaults"`
	Experiments []Experiment `yaml:"experiments"`
}

// LoadMatrix reads an experiment matrix from a YAML file.
func LoadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMatrix(f)
}

// ReadMatrix decodes, fills defaults and validates a YAML matrix.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m := &Matrix{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding experiment matrix: %w", err)
	}

	if m.Defaults.Games == 0 {
		m.Defaults.Games = 20
	}
	if m.Defaults.MaxPlies == 0 {
		m.Defaults.MaxPlies = 200
	}
	for i := range m.Experiments {
		e := &m.Experiments[i]
		if e.Games == 0 {
			e.Games = m.Defaults.Games
		}
		if e.MaxPlies == 0 {
			e.MaxPlies = m.Defaults.MaxPlies
		}
		if e.Seed == 0 {
			e.Seed = m.Defaults.Seed + uint64(i)
		}
	}
	return m, m.Validate()
}

// Validate reports every malformed entry.
func (m *Matrix) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, e := range m.Experiments {
		switch {
		case e.ID == "":
			errs = append(errs, fmt.Errorf("experiment %d: missing id", i))
		case seen[e.ID]:
			errs = append(errs, fmt.Errorf("experiment %d: duplicate id %q", i, e.ID))
		}
		seen[e.ID] = true
		if !lo.Contains(ExperimentTypes, e.Type) {
			errs = append(errs, fmt.Errorf("experiment %q: unknown type %q", e.ID, e.Type))
		}
		if e.White == "" || e.Black == "" {
			errs = append(errs, fmt.Errorf("experiment %q: white and black agents are required", e.ID))
		}
		if e.Games < 0 || e.MaxPlies < 0 {
			errs = append(errs, fmt.Errorf("experiment %q: games and max_plies must be positive", e.ID))
		}
	}
	return errors.Join(errs...)
}

// Filter returns the experiments of the given types, or all of them when no
// type is named.
func (m *Matrix) Filter(types ...ExperimentType) []Experiment {
	if len(types) == 0 {
		return m.Experiments
	}
	return lo.Filter(m.Experiments, func(e Experiment, _ int) bool {
		return lo.Contains(types, e.Type)
	})
}
