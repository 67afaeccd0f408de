package dsl

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/motion/synth"
	"github.com/satindergrewal/figura/internal/skeleton"
)

func markers(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "@") {
			out = append(out, line)
		}
	}
	return out
}

// --- Generate ---

func TestGenerateNativeTimes(t *testing.T) {
	text := Generate(synth.Pirouette(), 0)

	lines := strings.Split(text, "\n")
	if lines[0] != "# pirouette" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "duration 4.9000" {
		t.Errorf("duration line = %q", lines[1])
	}
	if lines[2] != "frametime 0.033333" {
		t.Errorf("frametime line = %q", lines[2])
	}

	m := markers(text)
	if len(m) != 148 {
		t.Fatalf("markers = %d, want 148", len(m))
	}
	if m[0] != "@0.0000" || m[len(m)-1] != "@4.9000" {
		t.Errorf("first/last marker = %q/%q", m[0], m[len(m)-1])
	}
}

func TestGenerateRootLine(t *testing.T) {
	text := Generate(synth.Pirouette(), 1)
	var hip, shoulder string
	for _, line := range strings.Split(text, "\n") {
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "hip":
			if hip == "" {
				hip = line
			}
		case "lShldr":
			if shoulder == "" {
				shoulder = line
			}
		}
	}
	if !strings.Contains(hip, " pos ") || !strings.Contains(hip, " rot ") {
		t.Errorf("hip line = %q, want pos and rot", hip)
	}
	if strings.Contains(shoulder, " pos ") || !strings.HasPrefix(shoulder, "  lShldr     rot ") {
		t.Errorf("lShldr line = %q", shoulder)
	}
}

func TestGenerateIntervalAppendsDuration(t *testing.T) {
	m := markers(Generate(synth.Pirouette(), 0.5))
	if len(m) != 11 {
		t.Fatalf("markers = %v, want 11", m)
	}
	if m[9] != "@4.5000" || m[10] != "@4.9000" {
		t.Errorf("tail markers = %v", m[9:])
	}
}

func TestGenerateIntervalExactMultiple(t *testing.T) {
	m := markers(Generate(synth.Clip("short", 1), 0.5))
	want := []string{"@0.0000", "@0.5000", "@1.0000"}
	if len(m) != len(want) {
		t.Fatalf("markers = %v, want %v", m, want)
	}
	for i := range want {
		if m[i] != want[i] {
			t.Errorf("marker %d = %q, want %q", i, m[i], want[i])
		}
	}
}

func TestFormatBone(t *testing.T) {
	rot := motion.Euler{0, 0, -160}
	pos := r3.Vec{X: 1, Y: 90, Z: -2.5}

	if _, ok := FormatBone("lHand", motion.BoneData{Pos: &pos}); ok {
		t.Error("pos-only non-root bone should not print")
	}
	got, _ := FormatBone("hip", motion.BoneData{Pos: &pos})
	if want := "  hip       pos 1.0 90.0 -2.5  rot 0.0 0.0 0.0"; got != want {
		t.Errorf("hip = %q, want %q", got, want)
	}
	got, _ = FormatBone("rShldr", motion.BoneData{Rot: &rot})
	if want := "  rShldr     rot 0.0 0.0 -160.0"; got != want {
		t.Errorf("rShldr = %q, want %q", got, want)
	}
}

func TestFormatBoneNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	rot := motion.Euler{negZero, 0, 10}
	got, _ := FormatBone("lShldr", motion.BoneData{Rot: &rot})
	if want := "  lShldr     rot 0.0 0.0 10.0"; got != want {
		t.Errorf("lShldr = %q, want %q", got, want)
	}
	pos := r3.Vec{X: negZero, Y: 90}
	got, _ = FormatBone("hip", motion.BoneData{Pos: &pos, Rot: &rot})
	if want := "  hip       pos 0.0 90.0 0.0  rot 0.0 0.0 10.0"; got != want {
		t.Errorf("hip = %q, want %q", got, want)
	}
}

// --- Parse ---

const sample = `# test
duration 2.5
frametime 0.033333
  orphan rot 1 2 3
@0
  hip pos 0 90 0 rot 0 0 0
  lShldr rot 0 0 -160 wobble
@1.0
  lShldr rot 10 0 0
`

func TestParse(t *testing.T) {
	seq := Parse(sample)
	if seq.Duration != 2.5 {
		t.Errorf("Duration = %v, want 2.5", seq.Duration)
	}
	if len(seq.Keyframes) != 2 {
		t.Fatalf("keyframes = %d, want 2", len(seq.Keyframes))
	}
	kf := seq.Keyframes[0]
	if len(kf.Bones) != 2 {
		t.Errorf("first keyframe bones = %d, want 2", len(kf.Bones))
	}
	if r := kf.Bones["lShldr"].Rot; r == nil || *r != (motion.Euler{0, 0, -160}) {
		t.Errorf("lShldr rot = %v", r)
	}
	if p := kf.Bones["hip"].Pos; p == nil || p.Y != 90 {
		t.Errorf("hip pos = %v", p)
	}
	if seq.Keyframes[1].Time != 1 {
		t.Errorf("second time = %v", seq.Keyframes[1].Time)
	}
}

func TestParseTokenOrder(t *testing.T) {
	seq := Parse("@0\nhip rot 1 2 3 pos 4 5 6\n")
	d := seq.Keyframes[0].Bones["hip"]
	if d.Rot == nil || *d.Rot != (motion.Euler{1, 2, 3}) {
		t.Errorf("rot = %v", d.Rot)
	}
	if d.Pos == nil || *d.Pos != (r3.Vec{X: 4, Y: 5, Z: 6}) {
		t.Errorf("pos = %v", d.Pos)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		kfs  int
	}{
		{"empty", "", 0},
		{"comments only", "# a\n# b\n", 0},
		{"bad time", "@abc\nhip rot 0 0 0\n", 0},
		{"short rot", "@0\nhip rot 1 2\n", 1},
		{"frametime ignored", "frametime 9\n@0\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := Parse(tt.text)
			if len(seq.Keyframes) != tt.kfs {
				t.Errorf("keyframes = %d, want %d", len(seq.Keyframes), tt.kfs)
			}
		})
	}
	if d := Parse("@0\nhip rot 1 2\n").Keyframes[0].Bones["hip"]; d.Rot != nil {
		t.Errorf("short rot parsed as %v", d.Rot)
	}
}

func TestLint(t *testing.T) {
	issues := Lint(sample)
	if len(issues) != 2 {
		t.Fatalf("issues = %v, want 2", issues)
	}
	if issues[0].Line != 3 || issues[0].Reason != "bone line outside keyframe" {
		t.Errorf("issue 0 = %+v", issues[0])
	}
	if issues[1].Line != 6 || !strings.Contains(issues[1].Reason, "wobble") {
		t.Errorf("issue 1 = %+v", issues[1])
	}
	if got := issues[0].String(); !strings.HasPrefix(got, "line 4: ") {
		t.Errorf("String() = %q", got)
	}
	if Lint(Generate(synth.Pirouette(), 0.5)) != nil {
		t.Error("generated text should lint clean")
	}
}

// --- Compile ---

func TestCompileTracks(t *testing.T) {
	clip := Compile(synth.Sequence(synth.PirouetteDuration), skeleton.Reference())
	tracks := clip.Tracks()
	if len(tracks) != 19 {
		t.Fatalf("rotation tracks = %d, want 19", len(tracks))
	}
	var withPos []string
	for _, tr := range tracks {
		if tr.HasPosition() {
			withPos = append(withPos, tr.Bone)
		}
	}
	if len(withPos) != 1 || withPos[0] != "hip" {
		t.Errorf("position tracks = %v, want [hip]", withPos)
	}
	if tracks[0].Bone != "hip" {
		t.Errorf("first track = %q, want hip", tracks[0].Bone)
	}
	if clip.Name() != ClipName || clip.Skeleton() == nil {
		t.Errorf("clip name/skeleton = %q/%v", clip.Name(), clip.Skeleton())
	}
}

func TestCompileKeepsParsedDuration(t *testing.T) {
	clip := Compile(Parse("duration 3\n@0\nhip rot 0 0 0\n@1\nhip rot 0 0 90\n"), nil)
	if clip.Duration() != 3 {
		t.Errorf("Duration = %v, want 3", clip.Duration())
	}
}

func TestCompileSkipsRotationlessBones(t *testing.T) {
	clip := Compile(Parse("@0\nhip pos 0 90 0\nhead rot 1 0 0\n"), nil)
	if _, ok := clip.Track("hip"); ok {
		t.Error("hip has no rotation and should have no track")
	}
	if _, ok := clip.Track("head"); !ok {
		t.Error("head track missing")
	}
}

func TestCompileCollapsesDuplicateTimes(t *testing.T) {
	clip := Compile(Parse("@0.5\nhead rot 10 0 0\n@0.50001\nhead rot 20 0 0\n@1\nhead rot 30 0 0\n"), nil)
	tr, _ := clip.Track("head")
	if len(tr.Times) != 2 {
		t.Fatalf("times = %v, want 2 keys", tr.Times)
	}
	if d := motion.AngleDeg(tr.Rotations[0], motion.EulerToQuat(motion.Euler{20, 0, 0})); d > 1e-4 {
		t.Errorf("duplicate kept first value, off by %v deg", d)
	}
}

func TestRoundTripWithinOneDegree(t *testing.T) {
	src := synth.Pirouette()
	seq := Parse(Generate(src, 0))
	clip := Compile(seq, skeleton.Reference())

	for _, kf := range seq.Keyframes {
		want := src.Pose(kf.Time)
		got := clip.Pose(kf.Time)
		for bone, w := range want {
			if d := motion.AngleDeg(w.Rot, got[bone].Rot); d > 1 {
				t.Fatalf("%s at %v off by %v deg", bone, kf.Time, d)
			}
		}
		if p := got["hip"].Pos; p == nil || r3.Norm(r3.Sub(*p, *want["hip"].Pos)) > 0.1 {
			t.Fatalf("hip position at %v = %v, want %v", kf.Time, p, want["hip"].Pos)
		}
	}
}

// --- Line index ---

func TestIndexLines(t *testing.T) {
	text := "duration 1\n\n@0.0000\n  hip rot 0 0 0\n\n@0.5000\n  hip rot 0 0 0\n@bad\n"
	index := IndexLines(text)
	if len(index) != 2 {
		t.Fatalf("index = %v, want 2 marks", index)
	}
	if index[0] != (LineMark{Time: 0, Line: 2}) || index[1] != (LineMark{Time: 0.5, Line: 5}) {
		t.Errorf("index = %v", index)
	}
}

func TestLineForTime(t *testing.T) {
	index := []LineMark{{0.5, 3}, {1.0, 7}, {2.0, 12}}
	tests := []struct {
		t    float64
		want int
	}{
		{0.1, -1},
		{0.5, 3},
		{0.99, 3},
		{1.0, 7},
		{1.5, 7},
		{99, 12},
	}
	for _, tt := range tests {
		if got := LineForTime(index, tt.t); got != tt.want {
			t.Errorf("LineForTime(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
	if got := LineForTime(nil, 1); got != -1 {
		t.Errorf("LineForTime(empty) = %d, want -1", got)
	}
}

func TestLineForTimeUnsorted(t *testing.T) {
	// Document order, not time order: the later entry plays first.
	index := []LineMark{{4, 1}, {0, 2}, {4, 5}}
	tests := []struct {
		t    float64
		want int
	}{
		{-1, -1},
		{0, 2},
		{2, 2},
		{4, 5},
		{5, 5},
	}
	for _, tt := range tests {
		if got := LineForTime(index, tt.t); got != tt.want {
			t.Errorf("LineForTime(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

// --- Fidelity ---

func TestCompareIdentical(t *testing.T) {
	src := synth.Pirouette()
	r := Compare(src, src, 0.1)
	if r.Samples != 50 {
		t.Errorf("Samples = %d, want 50", r.Samples)
	}
	if len(r.Bones) != 19 {
		t.Errorf("bones compared = %d, want 19", len(r.Bones))
	}
	if _, worst := r.Worst(); worst.MaxDeg > 1e-6 || r.RootMaxDist != 0 {
		t.Errorf("identical motions differ: %+v", r)
	}
}

func TestCompareRoundTrip(t *testing.T) {
	src := synth.Pirouette()
	clip := Compile(Parse(Generate(src, 0)), skeleton.Reference())
	r := Compare(src, clip, 0)
	bone, worst := r.Worst()
	if worst.MaxDeg > 1 {
		t.Errorf("worst bone %s off by %v deg at %v", bone, worst.MaxDeg, worst.WorstTime)
	}
	if math.IsNaN(r.RootMaxDist) || r.RootMaxDist > 0.1 {
		t.Errorf("root drift = %v cm", r.RootMaxDist)
	}
}
