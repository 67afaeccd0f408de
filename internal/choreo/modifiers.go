package choreo

import "github.com/satindergrewal/figura/internal/motion"

// MirrorPairs are the left/right bones swapped by Mirror.
var MirrorPairs = [][2]string{
	{"lCollar", "rCollar"},
	{"lShldr", "rShldr"},
	{"lForeArm", "rForeArm"},
	{"lHand", "rHand"},
	{"lThigh", "rThigh"},
	{"lShin", "rShin"},
	{"lFoot", "rFoot"},
}

var mirrorMap = func() map[string]string {
	m := make(map[string]string, 2*len(MirrorPairs))
	for _, p := range MirrorPairs {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}()

// MirrorName returns the opposite-side bone name, or name itself.
func MirrorName(name string) string {
	if m, ok := mirrorMap[name]; ok {
		return m
	}
	return name
}

// Mirror swaps paired bones and reflects the root: its X position and its
// Y rotation change sign. Other bones pass through.
func Mirror(kfs []motion.Keyframe) []motion.Keyframe {
	out := make([]motion.Keyframe, len(kfs))
	for i, kf := range kfs {
		bones := make(map[string]motion.BoneData, len(kf.Bones))
		for name, d := range kf.Bones {
			d = d.Clone()
			if name == motion.RootBone {
				if d.Pos != nil {
					d.Pos.X = -d.Pos.X
				}
				if d.Rot != nil {
					d.Rot[2] = -d.Rot[2]
				}
			}
			bones[MirrorName(name)] = d
		}
		out[i] = motion.Keyframe{Time: kf.Time, Bones: bones}
	}
	return out
}

// Reverse plays keyframes backwards: order flips and each time becomes
// last-time minus time.
func Reverse(kfs []motion.Keyframe) []motion.Keyframe {
	if len(kfs) == 0 {
		return nil
	}
	maxTime := kfs[len(kfs)-1].Time
	out := make([]motion.Keyframe, len(kfs))
	for i, kf := range kfs {
		out[len(kfs)-1-i] = motion.Keyframe{Time: maxTime - kf.Time, Bones: kf.Bones}
	}
	return out
}

// ScaleTime divides every time by speed. Non-positive speeds leave the
// keyframes unchanged.
func ScaleTime(kfs []motion.Keyframe, speed float64) []motion.Keyframe {
	if speed <= 0 || speed == 1 {
		return kfs
	}
	out := make([]motion.Keyframe, len(kfs))
	for i, kf := range kfs {
		out[i] = motion.Keyframe{Time: kf.Time / speed, Bones: kf.Bones}
	}
	return out
}
