// Package synth generates a deterministic recorded motion. It stands in for
// a captured performance in tests and as the demo source of the server.
package synth

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/skeleton"
)

const (
	PirouetteDuration = 4.9
	PirouetteHipY     = 90.0
)

// EulerAt returns the synthetic rotation of bone i at time t. Every axis
// stays well inside ±90° so decoding never hits the gimbal branch.
func EulerAt(i int, t float64) motion.Euler {
	k := float64(i + 1)
	return motion.Euler{
		25 * math.Sin(1.3*t+0.4*k),
		35 * math.Sin(0.9*t+0.7*k),
		60 * math.Sin(1.1*t+0.2*k),
	}
}

// HipAt returns the synthetic root position at time t.
func HipAt(t float64) r3.Vec {
	return r3.Vec{
		X: 12 * math.Sin(0.8*t),
		Y: PirouetteHipY + 4*math.Sin(2*t),
		Z: 6 * math.Cos(0.8*t),
	}
}

// SampleTimes returns the 30 fps native times covering the duration.
func SampleTimes(duration float64) []float64 {
	n := int(math.Round(duration * motion.FrameRate))
	times := make([]float64, n+1)
	for i := range times {
		times[i] = math.Min(float64(i)/motion.FrameRate, duration)
	}
	return times
}

// Pirouette returns a 4.9 s, 30 fps recorded motion over all DSL bones.
func Pirouette() *motion.Clip {
	return Clip("pirouette", PirouetteDuration)
}

// Clip builds the synthetic motion with an arbitrary duration.
func Clip(name string, duration float64) *motion.Clip {
	times := SampleTimes(duration)
	tracks := make([]motion.Track, 0, len(motion.Bones))
	for i, bone := range motion.Bones {
		tr := motion.Track{
			Bone:      bone,
			Times:     times,
			Rotations: make([]quat.Number, len(times)),
		}
		for j, t := range times {
			tr.Rotations[j] = motion.EulerToQuat(EulerAt(i, t))
		}
		if bone == motion.RootBone {
			tr.PosTimes = times
			tr.Positions = make([]r3.Vec, len(times))
			for j, t := range times {
				tr.Positions[j] = HipAt(t)
			}
		}
		tracks = append(tracks, tr)
	}
	return motion.NewClip(name, duration, skeleton.Reference(), tracks)
}

// Sequence returns the same motion as a keyframe sequence, values rounded
// to one decimal the way generated text stores them.
func Sequence(duration float64) motion.Sequence {
	times := SampleTimes(duration)
	seq := motion.Sequence{Duration: duration}
	for _, t := range times {
		kf := motion.Keyframe{Time: round4(t), Bones: make(map[string]motion.BoneData, len(motion.Bones))}
		for i, bone := range motion.Bones {
			e := EulerAt(i, t)
			for k := range e {
				e[k] = round1(e[k])
			}
			bd := motion.BoneData{Rot: &e}
			if bone == motion.RootBone {
				p := HipAt(t)
				p = r3.Vec{X: round1(p.X), Y: round1(p.Y), Z: round1(p.Z)}
				bd.Pos = &p
			}
			kf.Bones[bone] = bd
		}
		seq.Keyframes = append(seq.Keyframes, kf)
	}
	return seq
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
