package route

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/authrail/authrail/permission"
)

// ErrAmbiguousRequirement is returned when a YAML entry sets more than one of
// public, authenticated, permission, any_of, and all_of.
var ErrAmbiguousRequirement = errors.New("route entry declares more than one requirement")

type yamlEntry struct {
	Method        string   `yaml:"method"`
	Path          string   `yaml:"path"`
	Public        bool     `yaml:"public"`
	Authenticated bool     `yaml:"authenticated"`
	Permission    string   `yaml:"permission"`
	AnyOf         []string `yaml:"any_of"`
	AllOf         []string `yaml:"all_of"`
}

// LoadRegistry reads an ordered YAML document of route entries and compiles
// it into a [Registry]. Document order is preserved, so the first-match-wins
// lookup semantics follow the file exactly.
//
// Each entry sets at most one of public, authenticated, permission, any_of,
// or all_of; an entry that sets none is public, mirroring a null requirement
// in a code-built registry. An omitted method matches every method.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var raw []yamlEntry
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode route registry: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, y := range raw {
		req, err := y.requirement()
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s %s): %w", i, y.Method, y.Path, err)
		}
		entries = append(entries, Entry{
			Method:      y.Method,
			Pattern:     y.Path,
			Requirement: req,
		})
	}

	return NewRegistry(entries...)
}

func (y yamlEntry) requirement() (permission.Requirement, error) {
	declared := 0
	if y.Public {
		declared++
	}
	if y.Authenticated {
		declared++
	}
	if y.Permission != "" {
		declared++
	}
	if len(y.AnyOf) > 0 {
		declared++
	}
	if len(y.AllOf) > 0 {
		declared++
	}
	if declared > 1 {
		return permission.Requirement{}, ErrAmbiguousRequirement
	}

	switch {
	case y.Authenticated:
		return permission.Authenticated(), nil
	case y.Permission != "":
		return permission.Require(y.Permission), nil
	case len(y.AnyOf) > 0:
		return permission.RequireAny(y.AnyOf...), nil
	case len(y.AllOf) > 0:
		return permission.RequireAll(y.AllOf...), nil
	}
	return permission.Public(), nil
}
