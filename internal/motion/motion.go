package motion

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	FrameRate     = 30
	FrameTime     = 1.0 / FrameRate         // seconds per edit frame
	FrameDuration = time.Second / FrameRate // same, as a wall-clock tick
	TimeQuantum   = 1e-4                    // compositing time resolution
	RootBone      = "hip"                   // only bone that carries a position
)

// Bones lists the 19 DSL bone names in canonical output order.
var Bones = []string{
	"hip", "abdomen", "chest", "neck", "head",
	"lCollar", "lShldr", "lForeArm", "lHand",
	"rCollar", "rShldr", "rForeArm", "rHand",
	"lThigh", "lShin", "lFoot",
	"rThigh", "rShin", "rFoot",
}

var boneOrder = func() map[string]int {
	m := make(map[string]int, len(Bones))
	for i, b := range Bones {
		m[b] = i
	}
	return m
}()

// Euler is a rotation in degrees stored as [z, x, y]. Axes apply X, then Y,
// then Z (intrinsic Z-X-Y).
type Euler [3]float64

// Z, X and Y return the per-axis angles.
func (e Euler) Z() float64 { return e[0] }
func (e Euler) X() float64 { return e[1] }
func (e Euler) Y() float64 { return e[2] }

// BoneData holds the optional rotation and position for one bone at one time.
type BoneData struct {
	Rot *Euler
	Pos *r3.Vec
}

// Clone returns a copy that shares no pointers with b.
func (b BoneData) Clone() BoneData {
	var out BoneData
	if b.Rot != nil {
		r := *b.Rot
		out.Rot = &r
	}
	if b.Pos != nil {
		p := *b.Pos
		out.Pos = &p
	}
	return out
}

// Keyframe is one time-stamped snapshot of bone values.
type Keyframe struct {
	Time  float64
	Bones map[string]BoneData
}

// Sequence is a parsed keyframe list. Times are strictly increasing.
type Sequence struct {
	Duration  float64
	Keyframes []Keyframe
}

// Motion is a recorded motion that can be queried per time.
type Motion interface {
	Name() string
	Duration() float64
	// Bones returns the tracked bone names in output order.
	Bones() []string
	// SampleTimes returns the motion's native sample times.
	SampleTimes() []float64
	// Sample returns each tracked bone's local rotation and, for the root,
	// its local position (cm).
	Sample(t float64) map[string]BoneData
}

// SortBones orders names canonically: DSL bones in table order first, then
// the rest alphabetically.
func SortBones(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i], names[j]
		ia, oka := boneOrder[a]
		ib, okb := boneOrder[b]
		switch {
		case oka && okb:
			return ia < ib
		case oka:
			return true
		case okb:
			return false
		}
		return a < b
	})
}

// Ticks converts seconds to the integer TimeQuantum grid.
func Ticks(t float64) int64 {
	return int64(math.Round(t * 1e4))
}

// Seconds converts grid ticks back to seconds.
func Seconds(ticks int64) float64 {
	return float64(ticks) / 1e4
}

// RoundTime rounds t to the TimeQuantum grid.
func RoundTime(t float64) float64 {
	return Seconds(Ticks(t))
}
