package playback

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/motion/synth"
)

// --- Smoothstep / Crossfade ---

func TestSmoothstepBoundaries(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := Smoothstep(tt.input); got != tt.want {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCrossfade(t *testing.T) {
	a := motion.EulerToQuat(motion.Euler{0, 0, -40})
	b := motion.EulerToQuat(motion.Euler{0, 0, 40})
	pa, pb := r3.Vec{X: 0}, r3.Vec{X: 10}
	out := map[string]motion.Transform{"hip": {Rot: a, Pos: &pa}, "tail": {Rot: a}}
	in := map[string]motion.Transform{"hip": {Rot: b, Pos: &pb}, "head": {Rot: b}}

	start := Crossfade(out, in, 0)
	if d := motion.AngleDeg(start["hip"].Rot, a); d > 1e-4 {
		t.Errorf("progress 0 off outgoing by %v deg", d)
	}
	if _, ok := start["tail"]; ok {
		t.Error("outgoing-only bone kept")
	}
	if start["head"].Rot != b {
		t.Error("incoming-only bone should pass through")
	}

	mid := Crossfade(out, in, 0.5)
	if d := motion.AngleDeg(mid["hip"].Rot, motion.Identity); d > 1e-4 {
		t.Errorf("midpoint off by %v deg", d)
	}
	if mid["hip"].Pos.X != 5 {
		t.Errorf("midpoint X = %v, want 5", mid["hip"].Pos.X)
	}

	end := Crossfade(out, in, 1)
	if d := motion.AngleDeg(end["hip"].Rot, b); d > 1e-4 {
		t.Errorf("progress 1 off incoming by %v deg", d)
	}
}

// --- Pipeline ---

func TestNewPipeline(t *testing.T) {
	p := NewPipeline(time.Second)
	s := p.Status()
	if s.Clip != "" || s.Time != 0 || s.Speed != 1 || !s.Playing {
		t.Errorf("initial status = %+v", s)
	}
	if _, ok := p.step(motion.FrameTime); ok {
		t.Error("step without a clip produced a frame")
	}
}

func TestPipelineControls(t *testing.T) {
	p := NewPipeline(0)
	p.SetClip(synth.Clip("c", 2))

	p.SetTime(5)
	if s := p.Status(); s.Time != 2 {
		t.Errorf("SetTime(5) = %v, want clamped 2", s.Time)
	}
	p.SetTime(-1)
	if s := p.Status(); s.Time != 0 {
		t.Errorf("SetTime(-1) = %v, want 0", s.Time)
	}
	if p.SetSpeed(0) || p.SetSpeed(-2) {
		t.Error("non-positive speed accepted")
	}
	if !p.SetSpeed(2) || p.Status().Speed != 2 {
		t.Error("SetSpeed(2) not applied")
	}

	p.step(0.25)
	if got := p.Status().Time; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("time after step = %v, want 0.5", got)
	}

	p.Pause()
	p.step(0.25)
	if got := p.Status().Time; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("paused time moved to %v", got)
	}
	p.Play()
	if !p.Status().Playing {
		t.Error("Play did not resume")
	}
}

func TestPipelineLoops(t *testing.T) {
	p := NewPipeline(0)
	p.SetClip(synth.Clip("c", 1))
	p.SetTime(0.9)
	f, ok := p.step(0.3)
	if !ok {
		t.Fatal("no frame")
	}
	if math.Abs(f.Time-0.2) > 1e-9 {
		t.Errorf("looped time = %v, want 0.2", f.Time)
	}
	if len(f.Bones) != 19 || f.Clip != "c" {
		t.Errorf("frame = %s with %d bones", f.Clip, len(f.Bones))
	}
}

func TestPipelineSetClipClampsAndCrossfades(t *testing.T) {
	p := NewPipeline(100 * time.Millisecond) // 3 frames
	p.SetClip(synth.Clip("long", 4))
	p.SetTime(3)
	p.Pause()

	short := synth.Clip("short", 1)
	p.SetClip(short)
	if got := p.Status().Time; got != 1 {
		t.Errorf("time after swap = %v, want clamped 1", got)
	}

	var last Frame
	for i := 0; i < 3; i++ {
		f, _ := p.step(motion.FrameTime)
		if i == 0 {
			if d := motion.AngleDeg(f.Bones["head"].Rot, short.Pose(1)["head"].Rot); d < 1e-3 {
				t.Error("first frame after swap not blended")
			}
		}
		last = f
	}
	if d := motion.AngleDeg(last.Bones["head"].Rot, short.Pose(1)["head"].Rot); d > 1e-4 {
		t.Errorf("crossfade did not finish, off by %v deg", d)
	}
}

func TestPipelineRunEmitsFrames(t *testing.T) {
	p := NewPipeline(0)
	p.SetClip(synth.Clip("c", 1))
	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	select {
	case f := <-p.Frames():
		if f.Clip != "c" {
			t.Errorf("frame clip = %q", f.Clip)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for frame")
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-p.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Frames not closed after cancel")
		}
	}
}

func TestFrameJSON(t *testing.T) {
	pos := r3.Vec{X: 1, Y: 90, Z: 2}
	f := Frame{Time: 0.5, Clip: "c", Bones: map[string]motion.Transform{
		"hip":  {Rot: motion.Identity, Pos: &pos},
		"head": {Rot: motion.Identity},
	}}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		T     float64 `json:"t"`
		Bones map[string]struct {
			Q []float64 `json:"q"`
			P []float64 `json:"p"`
		} `json:"bones"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.T != 0.5 || len(got.Bones["hip"].P) != 3 || got.Bones["hip"].P[1] != 90 {
		t.Errorf("decoded = %+v", got)
	}
	if q := got.Bones["head"].Q; len(q) != 4 || q[3] != 1 || got.Bones["head"].P != nil {
		t.Errorf("head = %+v", got.Bones["head"])
	}
}
