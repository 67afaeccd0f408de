package dsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/satindergrewal/figura/internal/motion"
)

// Generate samples m into low-level text. With interval <= 0 the motion's
// native sample times are used; otherwise samples run from 0 to the duration
// in interval steps, and the duration itself is always the last sample.
func Generate(m motion.Motion, interval float64) string {
	times, frameTime := generateTimes(m, interval)

	name := m.Name()
	if name == "" {
		name = "motion"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", name)
	fmt.Fprintf(&b, "duration %.4f\n", m.Duration())
	fmt.Fprintf(&b, "frametime %.6f\n\n", frameTime)

	bones := m.Bones()
	for _, t := range times {
		sample := m.Sample(t)
		fmt.Fprintf(&b, "@%.4f\n", t)
		for _, bone := range bones {
			if line, ok := FormatBone(bone, sample[bone]); ok {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func generateTimes(m motion.Motion, interval float64) ([]float64, float64) {
	if interval <= 0 {
		times := m.SampleTimes()
		if len(times) == 0 {
			times = []float64{0}
		}
		frameTime := motion.FrameTime
		if len(times) > 1 {
			frameTime = times[1] - times[0]
		}
		return times, frameTime
	}

	dur := m.Duration()
	var times []float64
	for i := 0; ; i++ {
		t := float64(i) * interval
		if t > dur+interval*0.01 {
			break
		}
		times = append(times, math.Min(t, dur))
	}
	switch last := times[len(times)-1]; {
	case dur-last > motion.TimeQuantum:
		times = append(times, dur)
	case last < dur:
		times[len(times)-1] = dur
	}
	return times, interval
}

// FormatBone renders one bone line. The root gets pos and rot (rot defaults
// to zero), other bones get rot only. Bones with nothing printable return
// false.
func FormatBone(name string, d motion.BoneData) (string, bool) {
	if name == motion.RootBone && d.Pos != nil {
		r := motion.Euler{}
		if d.Rot != nil {
			r = *d.Rot
		}
		p := d.Pos
		return fmt.Sprintf("  %s       pos %.1f %.1f %.1f  rot %.1f %.1f %.1f",
			name, pz(p.X), pz(p.Y), pz(p.Z), pz(r[0]), pz(r[1]), pz(r[2])), true
	}
	if d.Rot == nil {
		return "", false
	}
	r := d.Rot
	return fmt.Sprintf("  %-10s rot %.1f %.1f %.1f", name, pz(r[0]), pz(r[1]), pz(r[2])), true
}

// pz turns negative zero into zero so it prints as 0.0.
func pz(v float64) float64 { return v + 0 }
