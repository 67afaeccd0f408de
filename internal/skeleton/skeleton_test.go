package skeleton

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		skel  *Skeleton
		bones int
		root  string
		y     float64
	}{
		{Mixamo(), 22, "mixamorigHips", 98},
		{Reference(), 19, "hip", 90},
	}
	for _, tt := range tests {
		if len(tt.skel.Bones) != tt.bones {
			t.Errorf("%s: bones = %d, want %d", tt.skel.Name, len(tt.skel.Bones), tt.bones)
		}
		root, ok := tt.skel.Root()
		if !ok || root.Name != tt.root {
			t.Errorf("%s: root = %q, want %q", tt.skel.Name, root.Name, tt.root)
		}
		if p, _ := tt.skel.RestPosition(tt.root); p.Y != tt.y {
			t.Errorf("%s: root height = %v, want %v", tt.skel.Name, p.Y, tt.y)
		}
	}
}

func TestLookups(t *testing.T) {
	s := Reference()
	if !s.Has("lShldr") || s.Has("mixamorigHips") {
		t.Error("Has mismatch")
	}
	if b, ok := s.Bone("lShin"); !ok || b.Parent != "lThigh" {
		t.Errorf("Bone(lShin) = %+v", b)
	}
	if q, ok := s.RestRotation("head"); !ok || q.Real != 1 {
		t.Errorf("RestRotation(head) = %v, want identity", q)
	}
	if _, ok := s.RestPosition("tail"); ok {
		t.Error("RestPosition(tail) should fail")
	}
	if names := s.Names(); names[0] != "hip" || len(names) != 19 {
		t.Errorf("Names = %v", names)
	}
}

func TestParseRotation(t *testing.T) {
	s, err := Parse([]byte("name: t\nbones:\n  - {name: a, position: [0, 1, 0], rotation: [0, 0, 0.7071068, 0.7071068]}\n"))
	if err != nil {
		t.Fatal(err)
	}
	q, _ := s.RestRotation("a")
	if q.Kmag != 0.7071068 || q.Real != 0.7071068 {
		t.Errorf("RestRotation = %v", q)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "name: x\nbones: []\n"},
		{"unnamed", "bones:\n  - {position: [0, 0, 0]}\n"},
		{"duplicate", "bones:\n  - {name: a}\n  - {name: a}\n"},
		{"orphan", "bones:\n  - {name: a, parent: ghost}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
	if _, err := Parse([]byte("bones: [")); err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("malformed yaml err = %v", err)
	}
}

func TestMarshalLoadRoundTrip(t *testing.T) {
	data, err := Mixamo().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rig.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Bones) != 22 || s.Bones[7] != Mixamo().Bones[7] {
		t.Errorf("round trip lost data: %+v", s.Bones[7])
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Load of missing file should fail")
	}
}
