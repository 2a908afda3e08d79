// Package registry holds the list of tracked components.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Component is an upstream project that is packaged as one Fedora package.
type Component struct {
	// Package is the name of the package in dist-git and koji.
	Package string
	// Upstream is the name of the upstream project, it defaults to
	// Package.
	Upstream string
	// RequiredChecks is the minimum number of passing CI checks a pull
	// request must have before it is merged.
	RequiredChecks int
}

func (c *Component) String() string {
	if c.Upstream == c.Package {
		return fmt.Sprintf("%s:%d", c.Package, c.RequiredChecks)
	}

	return fmt.Sprintf("%s:%d:%s", c.Package, c.RequiredChecks, c.Upstream)
}

// NewComponent validates the parameters and returns a Component.
// If upstream is empty, pkg is used as upstream project name.
func NewComponent(pkg string, requiredChecks int, upstream string) (*Component, error) {
	pkg = strings.TrimSpace(pkg)
	upstream = strings.TrimSpace(upstream)

	if pkg == "" {
		return nil, errors.New("package name is empty")
	}

	if requiredChecks < 0 {
		return nil, fmt.Errorf("number of required checks must be >=0, is %d", requiredChecks)
	}

	if upstream == "" {
		upstream = pkg
	}

	return &Component{
		Package:        pkg,
		Upstream:       upstream,
		RequiredChecks: requiredChecks,
	}, nil
}

// ParseComponent parses a component definition in the format
// PACKAGE:NUM_CHECKS[:UPSTREAM].
func ParseComponent(spec string) (*Component, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid component format %q, must be PACKAGE:NUM_CHECKS[:UPSTREAM]", spec)
	}

	checks, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid component format %q, number of checks is not an integer: %w", spec, err)
	}

	var upstream string
	if len(parts) == 3 {
		upstream = parts[2]
	}

	c, err := NewComponent(parts[0], checks, upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid component %q: %w", spec, err)
	}

	return c, nil
}

// Registry is an ordered list of components.
// A package can only be registered once.
type Registry struct {
	components []*Component
	pkgs       map[string]struct{}
}

func New() *Registry {
	return &Registry{pkgs: map[string]struct{}{}}
}

// Add appends c to the registry.
func (r *Registry) Add(c *Component) error {
	if _, exists := r.pkgs[c.Package]; exists {
		return fmt.Errorf("component %q is registered multiple times", c.Package)
	}

	r.pkgs[c.Package] = struct{}{}
	r.components = append(r.components, c)

	return nil
}

// AddSpecs parses all component definitions and adds them in order.
func (r *Registry) AddSpecs(specs []string) error {
	for _, spec := range specs {
		c, err := ParseComponent(spec)
		if err != nil {
			return err
		}

		if err := r.Add(c); err != nil {
			return err
		}
	}

	return nil
}

// Components returns the registered components in registration order.
func (r *Registry) Components() []*Component {
	result := make([]*Component, len(r.components))
	copy(result, r.components)
	return result
}

func (r *Registry) Len() int {
	return len(r.components)
}

func (r *Registry) String() string {
	strs := make([]string, 0, len(r.components))
	for _, c := range r.components {
		strs = append(strs, c.String())
	}

	return strings.Join(strs, ", ")
}
