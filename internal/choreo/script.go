// Package choreo compiles choreography scripts into low-level keyframe text.
//
// A script places clips cut from recorded sources and hand-authored poses
// on a musical timeline:
//
//	bpm 120
//	source pirouette
//	clip spin from pirouette 1.5-3.5
//
//	pose arms-high
//	  lShldr rot 0 0 -160
//	  rShldr rot 0 0 160
//
//	@1:1 clip spin mirror speed 2
//	@3:1 pose arms-high ease-out hold 2
//
// Expand composites the clip layer and the pose layer into one absolute
// timeline and renders it with the dsl package grammar.
package choreo

import (
	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/motion"
)

const (
	DefaultBPM      = 120.0
	BeatsPerMeasure = 4
	RestPose        = "rest" // reserved pose name meaning no overrides
)

// ClipDef is a named slice of a registered source.
type ClipDef struct {
	Name   string
	Source string
	Start  float64
	End    float64
}

// Len returns the slice length in seconds.
func (c ClipDef) Len() float64 { return c.End - c.Start }

// Pose is a partial set of bone overrides.
type Pose map[string]motion.BoneData

// Kind says what a sequence entry places.
type Kind string

const (
	KindClip Kind = "clip"
	KindPose Kind = "pose"
)

// Entry is one @measure:beat line.
type Entry struct {
	Measure int
	Beat    int
	Kind    Kind
	Name    string
	Mirror  bool
	Reverse bool
	Speed   float64 // 0 means unchanged
	Hold    float64 // beats
	Ease    motion.Easing
	Line    int // 0-based source line
}

// Script is a parsed choreography script.
type Script struct {
	BPM      float64
	Sources  []string
	Clips    map[string]ClipDef
	Poses    map[string]Pose
	Sequence []Entry
	Issues   []dsl.Issue
}

// BeatToSeconds converts a 1-based measure and beat to seconds at bpm,
// assuming four beats per measure.
func BeatToSeconds(measure, beat int, bpm float64) float64 {
	spb := 60 / bpm
	return float64(measure-1)*BeatsPerMeasure*spb + float64(beat-1)*spb
}

// Time returns the entry's absolute time at bpm.
func (e Entry) Time(bpm float64) float64 {
	return BeatToSeconds(e.Measure, e.Beat, bpm)
}

// pose resolves a pose name. The rest pose and unknown names are empty.
func (s *Script) pose(name string) Pose {
	if name == RestPose {
		return nil
	}
	return s.Poses[name]
}
