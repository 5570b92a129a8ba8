// Package script loads and runs statekit scenarios: a set of named
// containers, a Provider/Subscribe tree rendered through templates, and a
// list of steps applied to the containers.
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the scenario format major version this build reads.
const SupportedMajor = "v1"

// Script is a parsed scenario file.
type Script struct {
	Version    string      `yaml:"version"`
	Containers []Container `yaml:"containers"`
	Tree       Node        `yaml:"tree"`
	Steps      []Step      `yaml:"steps,omitempty"`
}

// Container declares a named map container and its initial state.
type Container struct {
	Name  string         `yaml:"name"`
	State map[string]any `yaml:"state,omitempty"`
}

// Node is one widget of the scenario tree. Exactly one of Provide,
// Subscribe or Text is set; Children is allowed on Provide nodes and on
// plain grouping nodes that set none of the three.
type Node struct {
	Provide   []string `yaml:"provide,omitempty"`
	Subscribe []string `yaml:"subscribe,omitempty"`
	Render    string   `yaml:"render,omitempty"`
	Text      string   `yaml:"text,omitempty"`
	Children  []Node   `yaml:"children,omitempty"`
}

// Step is one scenario action. Exactly one of Set or Unmount is used.
type Step struct {
	// Set names the container to patch with Patch.
	Set   string         `yaml:"set,omitempty"`
	Patch map[string]any `yaml:"patch,omitempty"`
	// Unmount tears the tree down.
	Unmount bool `yaml:"unmount,omitempty"`
}

// ErrUnsupportedVersion is returned for scenarios of another major version.
var ErrUnsupportedVersion = errors.New("unsupported scenario version")

// Load reads and validates the scenario at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the version, container names, node shapes, render
// templates and steps. Subscriptions to containers no enclosing node
// provides are left for the runner to report.
func (s *Script) Validate() error {
	v := s.Version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid scenario version %q", s.Version)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w %s (want %s.x)", ErrUnsupportedVersion, s.Version, SupportedMajor)
	}

	declared := make(map[string]bool, len(s.Containers))
	for i, c := range s.Containers {
		if c.Name == "" {
			return fmt.Errorf("containers[%d]: missing name", i)
		}
		if declared[c.Name] {
			return fmt.Errorf("containers[%d]: duplicate name %q", i, c.Name)
		}
		declared[c.Name] = true
	}

	if err := s.Tree.validate("tree", declared); err != nil {
		return err
	}

	for i, st := range s.Steps {
		switch {
		case st.Set != "" && st.Unmount:
			return fmt.Errorf("steps[%d]: set and unmount are exclusive", i)
		case st.Set != "":
			if !declared[st.Set] {
				return fmt.Errorf("steps[%d]: unknown container %q", i, st.Set)
			}
		case st.Unmount:
		default:
			return fmt.Errorf("steps[%d]: empty step", i)
		}
	}
	return nil
}

func (n Node) validate(path string, declared map[string]bool) error {
	kinds := 0
	if len(n.Provide) > 0 {
		kinds++
	}
	if len(n.Subscribe) > 0 {
		kinds++
	}
	if n.Text != "" {
		kinds++
	}
	if kinds > 1 {
		return fmt.Errorf("%s: provide, subscribe and text are exclusive", path)
	}

	for _, name := range n.Provide {
		if !declared[name] {
			return fmt.Errorf("%s: unknown container %q", path, name)
		}
	}
	if len(n.Subscribe) > 0 {
		if n.Render == "" {
			return fmt.Errorf("%s: subscribe needs a render template", path)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("%s: subscribe nodes have no children", path)
		}
		if _, err := parseTemplate(path, n.Render); err != nil {
			return err
		}
	} else if n.Render != "" {
		return fmt.Errorf("%s: render without subscribe", path)
	}
	if n.Text != "" && len(n.Children) > 0 {
		return fmt.Errorf("%s: text nodes have no children", path)
	}

	for i, child := range n.Children {
		if err := child.validate(fmt.Sprintf("%s.children[%d]", path, i), declared); err != nil {
			return err
		}
	}
	return nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: bad render template: %w", name, err)
	}
	return tmpl, nil
}
