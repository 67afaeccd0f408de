package dsl

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/skeleton"
)

// ClipName is the name given to compiled clips.
const ClipName = "dsl"

// Compile builds a playable clip from parsed keyframes. Every bone with at
// least one rotation gets a rotation track; bones that also carry positions
// get a position track. The clip duration is seq.Duration, which may differ
// from the last keyframe time. ref is the skeleton the tracks bind to.
func Compile(seq motion.Sequence, ref *skeleton.Skeleton) *motion.Clip {
	seen := make(map[string]bool)
	var names []string
	for _, kf := range seq.Keyframes {
		for name := range kf.Bones {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	motion.SortBones(names)

	tracks := make([]motion.Track, 0, len(names))
	for _, name := range names {
		tr := motion.Track{Bone: name}
		for _, kf := range seq.Keyframes {
			d, ok := kf.Bones[name]
			if !ok || d.Rot == nil {
				continue
			}
			tr.Times, tr.Rotations = appendKey(tr.Times, tr.Rotations, kf.Time, motion.EulerToQuat(*d.Rot))
			if d.Pos != nil {
				tr.PosTimes, tr.Positions = appendKey(tr.PosTimes, tr.Positions, kf.Time, *d.Pos)
			}
		}
		if len(tr.Times) > 0 {
			tracks = append(tracks, tr)
		}
	}
	return motion.NewClip(ClipName, seq.Duration, ref, tracks)
}

type keyValue interface {
	quat.Number | r3.Vec
}

// appendKey adds a key, replacing the previous one when both round to the
// same time and dropping keys that would run backwards.
func appendKey[T keyValue](times []float64, vals []T, t float64, v T) ([]float64, []T) {
	if n := len(times); n > 0 {
		last := times[n-1]
		if motion.Ticks(t) == motion.Ticks(last) {
			vals[n-1] = v
			return times, vals
		}
		if t < last {
			return times, vals
		}
	}
	return append(times, t), append(vals, v)
}
