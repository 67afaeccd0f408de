package motion

import (
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/skeleton"
)

// Track is one bone's keyframed rotation and, for the root, position.
// Rotation and position keys carry their own time arrays.
type Track struct {
	Bone      string
	Times     []float64
	Rotations []quat.Number
	PosTimes  []float64
	Positions []r3.Vec
}

// HasPosition reports whether the track carries a position channel.
func (t Track) HasPosition() bool {
	return len(t.Positions) > 0
}

// Transform is a sampled bone value ready for a renderer.
type Transform struct {
	Rot quat.Number
	Pos *r3.Vec
}

// Clip is a compiled, immutable track set. It is replaced wholesale, never
// edited, so it is safe to share between goroutines.
type Clip struct {
	name     string
	duration float64
	skeleton *skeleton.Skeleton
	order    []string
	tracks   map[string]Track
}

// NewClip builds a clip from per-bone tracks. Track order is kept for
// Bones(); a later track for the same bone replaces the earlier one.
func NewClip(name string, duration float64, skel *skeleton.Skeleton, tracks []Track) *Clip {
	c := &Clip{
		name:     name,
		duration: duration,
		skeleton: skel,
		tracks:   make(map[string]Track, len(tracks)),
	}
	for _, t := range tracks {
		if _, dup := c.tracks[t.Bone]; !dup {
			c.order = append(c.order, t.Bone)
		}
		c.tracks[t.Bone] = t
	}
	return c
}

func (c *Clip) Name() string                 { return c.name }
func (c *Clip) Duration() float64            { return c.duration }
func (c *Clip) Skeleton() *skeleton.Skeleton { return c.skeleton }

// Bones returns the animated bone names in track order.
func (c *Clip) Bones() []string {
	return append([]string(nil), c.order...)
}

// Track returns the track for bone. The returned slices must not be modified.
func (c *Clip) Track(bone string) (Track, bool) {
	t, ok := c.tracks[bone]
	return t, ok
}

// Tracks returns every track in order.
func (c *Clip) Tracks() []Track {
	out := make([]Track, 0, len(c.order))
	for _, b := range c.order {
		out = append(out, c.tracks[b])
	}
	return out
}

// SampleTimes returns the key times of the root rotation track, or of the
// first track when there is no root.
func (c *Clip) SampleTimes() []float64 {
	if t, ok := c.tracks[RootBone]; ok {
		return append([]float64(nil), t.Times...)
	}
	if len(c.order) == 0 {
		return nil
	}
	return append([]float64(nil), c.tracks[c.order[0]].Times...)
}

// Pose samples every track at time t.
func (c *Clip) Pose(t float64) map[string]Transform {
	out := make(map[string]Transform, len(c.order))
	for _, b := range c.order {
		tr := c.tracks[b]
		x := Transform{Rot: sampleRotation(tr.Times, tr.Rotations, t)}
		if tr.HasPosition() {
			p := samplePosition(tr.PosTimes, tr.Positions, t)
			x.Pos = &p
		}
		out[b] = x
	}
	return out
}

// Sample implements Motion by decoding Pose back to Euler triples.
func (c *Clip) Sample(t float64) map[string]BoneData {
	pose := c.Pose(t)
	out := make(map[string]BoneData, len(pose))
	for b, x := range pose {
		e := QuatToEuler(x.Rot)
		out[b] = BoneData{Rot: &e, Pos: x.Pos}
	}
	return out
}

// bracket finds the keys surrounding t and the blend fraction between them.
func bracket(times []float64, t float64) (lo, hi int, frac float64) {
	n := len(times)
	if t <= times[0] {
		return 0, 0, 0
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 0
	}
	hi = sort.SearchFloat64s(times, t)
	if times[hi] == t {
		return hi, hi, 0
	}
	lo = hi - 1
	return lo, hi, (t - times[lo]) / (times[hi] - times[lo])
}

func sampleRotation(times []float64, vals []quat.Number, t float64) quat.Number {
	if len(times) == 0 {
		return Identity
	}
	lo, hi, f := bracket(times, t)
	if lo == hi {
		return vals[lo]
	}
	return Slerp(vals[lo], vals[hi], f)
}

func samplePosition(times []float64, vals []r3.Vec, t float64) r3.Vec {
	if len(times) == 0 {
		return r3.Vec{}
	}
	lo, hi, f := bracket(times, t)
	if lo == hi {
		return vals[lo]
	}
	return LerpPos(vals[lo], vals[hi], f)
}

var _ Motion = (*Clip)(nil)
