package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
)

// Issue describes an input line the parser skipped.
type Issue struct {
	Line   int    `json:"line"` // 0-based
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %q", i.Line+1, i.Reason, i.Text)
}

// Parse reads low-level text into a keyframe sequence. Malformed input is
// skipped silently.
func Parse(text string) motion.Sequence {
	seq, _ := parse(text)
	return seq
}

// Lint parses text and returns every skipped line or token.
func Lint(text string) []Issue {
	_, issues := parse(text)
	return issues
}

func parse(text string) (motion.Sequence, []Issue) {
	var (
		seq    motion.Sequence
		issues []Issue
		open   = -1 // index of the keyframe bone lines attach to
	)
	skip := func(n int, line, reason string) {
		issues = append(issues, Issue{Line: n, Text: line, Reason: reason})
	}

	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch {
		case fields[0] == "duration":
			d, ok := floatArg(fields)
			if !ok {
				skip(n, line, "bad duration")
				continue
			}
			seq.Duration = d

		case fields[0] == "frametime":
			// informational only

		case strings.HasPrefix(line, "@"):
			t, err := strconv.ParseFloat(strings.TrimPrefix(fields[0], "@"), 64)
			if err != nil {
				skip(n, line, "bad keyframe time")
				open = -1
				continue
			}
			if k := len(seq.Keyframes); k > 0 && t <= seq.Keyframes[k-1].Time {
				skip(n, line, "keyframe time not increasing")
			}
			seq.Keyframes = append(seq.Keyframes, motion.Keyframe{Time: t, Bones: map[string]motion.BoneData{}})
			open = len(seq.Keyframes) - 1

		case open < 0:
			skip(n, line, "bone line outside keyframe")

		default:
			name, data, bad := ParseBone(fields)
			if len(bad) > 0 {
				skip(n, line, "unknown tokens "+strings.Join(bad, " "))
			}
			seq.Keyframes[open].Bones[name] = data
		}
	}
	return seq, issues
}

// ParseBone reads "<name> [pos x y z] [rot z x y]" from a split line. The
// clauses may come in any order. Tokens it cannot use are returned in bad.
func ParseBone(fields []string) (name string, data motion.BoneData, bad []string) {
	if len(fields) == 0 {
		return "", data, nil
	}
	name = fields[0]
	for i := 1; i < len(fields); {
		switch fields[i] {
		case "pos":
			if v, ok := triple(fields[i+1:]); ok {
				p := r3.Vec{X: v[0], Y: v[1], Z: v[2]}
				data.Pos = &p
				i += 4
				continue
			}
		case "rot":
			if v, ok := triple(fields[i+1:]); ok {
				e := motion.Euler(v)
				data.Rot = &e
				i += 4
				continue
			}
		}
		bad = append(bad, fields[i])
		i++
	}
	return name, data, bad
}

func triple(fields []string) ([3]float64, bool) {
	var out [3]float64
	if len(fields) < 3 {
		return out, false
	}
	for i := range out {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return out, false
		}
		out[i] = v
	}
	return out, true
}

func floatArg(fields []string) (float64, bool) {
	if len(fields) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	return v, err == nil
}
