package choreo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/motion"
)

// EmptyOutput is what Expand renders for a script that places nothing.
const EmptyOutput = "duration 0\nframetime 0.033333\n"

// Extractor cuts rebased keyframes out of a registered source.
type Extractor interface {
	Extract(name string, start, end float64) (motion.Sequence, error)
}

// frameMap holds composited bone values per time tick. Later writes for
// the same tick and bone replace earlier ones.
type frameMap map[int64]map[string]motion.BoneData

func (f frameMap) at(t float64) map[string]motion.BoneData {
	k := motion.Ticks(t)
	frame, ok := f[k]
	if !ok {
		frame = make(map[string]motion.BoneData)
		f[k] = frame
	}
	return frame
}

// stamp merges the pose's rotations and positions into frame, keeping any
// channel the pose does not set.
func stamp(frame map[string]motion.BoneData, pose Pose) {
	for bone, d := range pose {
		merge(frame, bone, d.Rot, d.Pos)
	}
}

func merge(frame map[string]motion.BoneData, bone string, rot *motion.Euler, pos *r3.Vec) {
	cur := frame[bone]
	if rot != nil {
		r := *rot
		cur.Rot = &r
	}
	if pos != nil {
		p := *pos
		cur.Pos = &p
	}
	frame[bone] = cur
}

type timedEntry struct {
	Entry
	time float64
}

// Expand composites the script into low-level text. Clips form the base
// layer and poses are always stamped over them. Sources must already be
// registered with lib.
func Expand(s *Script, lib Extractor) (string, error) {
	var clips, poses []timedEntry
	for _, e := range s.Sequence {
		te := timedEntry{Entry: e, time: e.Time(s.BPM)}
		switch e.Kind {
		case KindClip:
			clips = append(clips, te)
		case KindPose:
			poses = append(poses, te)
		}
	}
	sort.SliceStable(clips, func(i, j int) bool { return clips[i].time < clips[j].time })
	sort.SliceStable(poses, func(i, j int) bool { return poses[i].time < poses[j].time })

	frames := make(frameMap)
	if err := s.layerClips(frames, clips, lib); err != nil {
		return "", err
	}
	s.layerPoses(frames, poses)

	if len(frames) == 0 {
		return EmptyOutput, nil
	}

	ticks := make([]int64, 0, len(frames))
	for k := range frames {
		ticks = append(ticks, k)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

	duration := motion.Seconds(ticks[len(ticks)-1])
	for _, e := range clips {
		def, ok := s.Clips[e.Name]
		if !ok {
			continue
		}
		length := def.Len()
		if e.Speed > 0 {
			length /= e.Speed
		}
		duration = math.Max(duration, e.time+length)
	}

	return render(frames, ticks, duration), nil
}

func (s *Script) layerClips(frames frameMap, clips []timedEntry, lib Extractor) error {
	for _, e := range clips {
		def, ok := s.Clips[e.Name]
		if !ok {
			continue
		}
		slice, err := lib.Extract(def.Source, def.Start, def.End)
		if err != nil {
			return fmt.Errorf("clip %q: %w", e.Name, err)
		}

		kfs := slice.Keyframes
		if e.Reverse {
			kfs = Reverse(kfs)
		}
		if e.Speed > 0 {
			kfs = ScaleTime(kfs, e.Speed)
		}
		if e.Mirror {
			kfs = Mirror(kfs)
		}

		for _, kf := range kfs {
			frame := frames.at(e.time + kf.Time)
			for bone, d := range kf.Bones {
				frame[bone] = d.Clone()
			}
		}
	}
	return nil
}

func (s *Script) layerPoses(frames frameMap, poses []timedEntry) {
	const ft = motion.FrameTime

	for i, curr := range poses {
		from := s.pose(curr.Name)
		if i == len(poses)-1 {
			stamp(frames.at(curr.time), from)
			continue
		}
		next := poses[i+1]
		to := s.pose(next.Name)

		interpStart := curr.time + curr.Hold*60/s.BPM
		interpEnd := next.time

		for k := 0; ; k++ {
			t := curr.time + float64(k)*ft
			if t >= interpStart+ft*0.5 {
				break
			}
			stamp(frames.at(t), from)
		}

		if interpEnd <= interpStart {
			continue
		}
		bones := unionBones(from, to)
		span := interpEnd - interpStart
		for k := 0; ; k++ {
			t := interpStart + float64(k)*ft
			if t > interpEnd+ft*0.5 {
				break
			}
			f := curr.Ease.Apply(math.Max(0, math.Min(1, (t-interpStart)/span)))
			blend(frames.at(t), bones, from, to, f)
		}
	}
}

// blend writes one interpolation step between two poses. Bones in both are
// slerped and lerped; bones only in the start pose hold until f reaches 1;
// bones only in the destination pose snap in once f is above 0.
func blend(frame map[string]motion.BoneData, bones []string, from, to Pose, f float64) {
	for _, bone := range bones {
		a, inFrom := from[bone]
		b, inTo := to[bone]
		switch {
		case inFrom && inTo:
			if a.Rot != nil && b.Rot != nil {
				r := motion.SlerpEuler(*a.Rot, *b.Rot, f)
				merge(frame, bone, &r, nil)
			}
			if a.Pos != nil && b.Pos != nil {
				p := motion.LerpPos(*a.Pos, *b.Pos, f)
				merge(frame, bone, nil, &p)
			}
		case inFrom:
			if f < 1 {
				merge(frame, bone, a.Rot, a.Pos)
			}
		case inTo:
			if f > 0 {
				merge(frame, bone, b.Rot, b.Pos)
			}
		}
	}
}

func unionBones(a, b Pose) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, p := range []Pose{a, b} {
		for bone := range p {
			if !seen[bone] {
				seen[bone] = true
				out = append(out, bone)
			}
		}
	}
	motion.SortBones(out)
	return out
}

func render(frames frameMap, ticks []int64, duration float64) string {
	var b strings.Builder
	b.WriteString("# expanded choreography\n")
	fmt.Fprintf(&b, "duration %.4f\n", duration)
	fmt.Fprintf(&b, "frametime %.6f\n\n", motion.FrameTime)

	for _, k := range ticks {
		frame := frames[k]
		names := make([]string, 0, len(frame))
		for name := range frame {
			names = append(names, name)
		}
		motion.SortBones(names)

		fmt.Fprintf(&b, "@%.4f\n", motion.Seconds(k))
		for _, name := range names {
			if line, ok := dsl.FormatBone(name, frame[name]); ok {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
