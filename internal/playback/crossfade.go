package playback

import "github.com/satindergrewal/figura/internal/motion"

// Smoothstep returns 3t^2 - 2t^3 for t clamped to [0,1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Crossfade blends an outgoing pose into an incoming one at progress
// (0 = all outgoing, 1 = all incoming) along a smoothstep curve. Bones the
// incoming pose lacks are dropped; bones only it has appear unblended.
func Crossfade(outgoing, incoming map[string]motion.Transform, progress float64) map[string]motion.Transform {
	gain := Smoothstep(progress)
	result := make(map[string]motion.Transform, len(incoming))

	for name, in := range incoming {
		out, ok := outgoing[name]
		if !ok {
			result[name] = in
			continue
		}
		x := motion.Transform{Rot: motion.Slerp(out.Rot, in.Rot, gain)}
		switch {
		case out.Pos != nil && in.Pos != nil:
			p := motion.LerpPos(*out.Pos, *in.Pos, gain)
			x.Pos = &p
		case in.Pos != nil:
			x.Pos = in.Pos
		}
		result[name] = x
	}
	return result
}
