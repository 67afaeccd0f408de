package dsl

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
)

// BoneError is the worst rotation difference seen for one bone.
type BoneError struct {
	MaxDeg    float64 `json:"max_deg"`
	WorstTime float64 `json:"worst_time"`
}

// Report summarises how far two motions drift apart.
type Report struct {
	Samples       int                  `json:"samples"`
	Bones         map[string]BoneError `json:"bones"`
	RootMaxDist   float64              `json:"root_max_dist"`
	RootWorstTime float64              `json:"root_worst_time"`
}

// Worst returns the bone with the largest rotation error.
func (r Report) Worst() (string, BoneError) {
	var (
		name  string
		worst BoneError
	)
	for b, e := range r.Bones {
		if name == "" || e.MaxDeg > worst.MaxDeg || (e.MaxDeg == worst.MaxDeg && b < name) {
			name, worst = b, e
		}
	}
	return name, worst
}

// Compare samples a and b every step seconds over a's duration and records,
// per bone present in both, the largest angle between their rotations. Root
// positions are compared by distance in cm.
func Compare(a, b motion.Motion, step float64) Report {
	if step <= 0 {
		step = motion.FrameTime
	}
	r := Report{Bones: make(map[string]BoneError)}
	dur := a.Duration()
	n := int(math.Floor(dur/step+1e-9)) + 1

	for i := 0; i < n; i++ {
		t := math.Min(float64(i)*step, dur)
		sa, sb := a.Sample(t), b.Sample(t)
		r.Samples++
		for bone, da := range sa {
			db, ok := sb[bone]
			if !ok || da.Rot == nil || db.Rot == nil {
				continue
			}
			deg := motion.AngleDeg(motion.EulerToQuat(*da.Rot), motion.EulerToQuat(*db.Rot))
			if e, seen := r.Bones[bone]; !seen || deg > e.MaxDeg {
				r.Bones[bone] = BoneError{MaxDeg: deg, WorstTime: t}
			}
			if bone == motion.RootBone && da.Pos != nil && db.Pos != nil {
				if d := r3.Norm(r3.Sub(*da.Pos, *db.Pos)); d > r.RootMaxDist {
					r.RootMaxDist, r.RootWorstTime = d, t
				}
			}
		}
	}
	return r
}
