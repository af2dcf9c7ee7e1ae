// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/curioloop/conelink/engine"
)

// SetParam validates a solver parameter against the engine and records it
// in the model's dictionary, so Reset can replay it onto a fresh engine.
func (m *Model) SetParam(name string, v engine.ParamValue) error {
	if err := m.eng.PutParam(name, v); err != nil {
		return fmt.Errorf("model: param %q: %w", name, err)
	}
	m.params[name] = v
	m.log.Debug("param set", "name", name, "value", paramValue(v))
	return nil
}

// Param reads a recorded parameter back.
func (m *Model) Param(name string) (engine.ParamValue, bool) {
	v, ok := m.params[name]
	return v, ok
}

// NamedParam pairs a parameter with its name.
type NamedParam struct {
	Name  string
	Value engine.ParamValue
}

// Params lists the recorded parameters sorted by name.
func (m *Model) Params() []NamedParam {
	out := make([]NamedParam, 0, len(m.params))
	for name, v := range m.params {
		out = append(out, NamedParam{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadParams reads a flat YAML mapping of parameter names to values and
// applies each entry through SetParam in name order. Integers become int
// parameters unless the engine wants a float for that name, floats become
// float parameters, and strings become string parameters. Entries up to the
// first failing one stay applied.
func (m *Model) LoadParams(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("model: load params: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: load params: %w", err)
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch v := raw[name].(type) {
		case int:
			if err := m.SetParam(name, engine.IntParam(v)); err != nil {
				// YAML writes whole floats without a decimal point.
				if ferr := m.SetParam(name, engine.FloatParam(float64(v))); ferr != nil {
					return err
				}
			}
		case float64:
			if err := m.SetParam(name, engine.FloatParam(v)); err != nil {
				return err
			}
		case string:
			if err := m.SetParam(name, engine.StrParam(v)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("model: load params: %q holds unsupported value %v", name, v)
		}
	}
	return nil
}

// SaveParams writes the recorded dictionary as a flat YAML mapping.
func (m *Model) SaveParams(path string) error {
	out := make(map[string]any, len(m.params))
	for name, v := range m.params {
		out[name] = paramValue(v)
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("model: save params: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("model: save params: %w", err)
	}
	return nil
}

func paramValue(v engine.ParamValue) any {
	switch v.Kind {
	case engine.ParamInt:
		return v.Int
	case engine.ParamFloat:
		return v.Float
	default:
		return v.Str
	}
}
