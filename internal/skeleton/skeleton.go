// Package skeleton describes bone hierarchies and their rest poses.
//
// A Skeleton is the descriptor a renderer hands to figura: bone names, the
// parent of each bone, and the rest-pose local position (cm) and rotation.
// Descriptors are plain YAML so a loader for any model format can emit one.
package skeleton

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for descriptors that fail validation.
var ErrInvalid = errors.New("invalid skeleton")

//go:embed data/*.yaml
var builtin embed.FS

// Bone is one joint of a skeleton.
type Bone struct {
	Name     string     `yaml:"name"`
	Parent   string     `yaml:"parent,omitempty"`
	Position [3]float64 `yaml:"position,flow"`
	Rotation [4]float64 `yaml:"rotation,flow,omitempty"` // x y z w
}

// Skeleton is an ordered bone list with a name index.
type Skeleton struct {
	Name  string `yaml:"name"`
	Bones []Bone `yaml:"bones"`

	index map[string]int
}

// New validates bones and builds a skeleton.
func New(name string, bones []Bone) (*Skeleton, error) {
	s := &Skeleton{Name: name, Bones: bones}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse decodes a YAML descriptor.
func Parse(data []byte) (*Skeleton, error) {
	var s Skeleton
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode skeleton: %w", err)
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a YAML descriptor from path.
func Load(path string) (*Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skeleton %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Mixamo returns the built-in Mixamo-named character rig.
func Mixamo() *Skeleton { return mustBuiltin("data/mixamo.yaml") }

// Reference returns the built-in rig using the short DSL bone names.
func Reference() *Skeleton { return mustBuiltin("data/reference.yaml") }

func mustBuiltin(name string) *Skeleton {
	data, err := builtin.ReadFile(name)
	if err != nil {
		panic(err)
	}
	s, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("builtin %s: %v", name, err))
	}
	return s
}

// Marshal encodes the skeleton as YAML.
func (s *Skeleton) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Skeleton) build() error {
	if len(s.Bones) == 0 {
		return fmt.Errorf("%w: no bones", ErrInvalid)
	}
	s.index = make(map[string]int, len(s.Bones))
	for i, b := range s.Bones {
		if b.Name == "" {
			return fmt.Errorf("%w: bone %d has no name", ErrInvalid, i)
		}
		if _, dup := s.index[b.Name]; dup {
			return fmt.Errorf("%w: duplicate bone %q", ErrInvalid, b.Name)
		}
		s.index[b.Name] = i
	}
	for _, b := range s.Bones {
		if b.Parent != "" {
			if _, ok := s.index[b.Parent]; !ok {
				return fmt.Errorf("%w: bone %q has unknown parent %q", ErrInvalid, b.Name, b.Parent)
			}
		}
	}
	return nil
}

// Has reports whether the skeleton contains a bone called name.
func (s *Skeleton) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Bone looks a bone up by name.
func (s *Skeleton) Bone(name string) (Bone, bool) {
	i, ok := s.index[name]
	if !ok {
		return Bone{}, false
	}
	return s.Bones[i], true
}

// Names returns bone names in declaration order.
func (s *Skeleton) Names() []string {
	out := make([]string, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = b.Name
	}
	return out
}

// Root returns the first bone without a parent.
func (s *Skeleton) Root() (Bone, bool) {
	for _, b := range s.Bones {
		if b.Parent == "" {
			return b, true
		}
	}
	return Bone{}, false
}

// RestPosition returns a bone's rest-pose local position.
func (s *Skeleton) RestPosition(name string) (r3.Vec, bool) {
	b, ok := s.Bone(name)
	if !ok {
		return r3.Vec{}, false
	}
	return r3.Vec{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]}, true
}

// RestRotation returns a bone's rest-pose local rotation. An all-zero
// rotation in the descriptor means identity.
func (s *Skeleton) RestRotation(name string) (quat.Number, bool) {
	b, ok := s.Bone(name)
	if !ok {
		return quat.Number{}, false
	}
	r := b.Rotation
	if r == [4]float64{} {
		return quat.Number{Real: 1}, true
	}
	return quat.Number{Imag: r[0], Jmag: r[1], Kmag: r[2], Real: r[3]}, true
}
