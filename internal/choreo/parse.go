package choreo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/motion"
)

var (
	entryRe      = regexp.MustCompile(`^@(\d+):(\d+)\s+(clip|pose)\s+(.+)`)
	markerRe     = regexp.MustCompile(`^@(\d+):(\d+)`)
	clipRe       = regexp.MustCompile(`^clip\s+(\S+)\s+from\s+(\S+)\s+(\S+)`)
	poseHeaderRe = regexp.MustCompile(`^pose\s+(\S+)\s*$`)
)

// Parse reads a choreography script. Like the low-level parser it skips
// what it cannot read; every skipped line or token is listed in Issues.
func Parse(text string) *Script {
	s := &Script{
		BPM:   DefaultBPM,
		Clips: make(map[string]ClipDef),
		Poses: make(map[string]Pose),
	}
	skip := func(n int, line, reason string) {
		s.Issues = append(s.Issues, dsl.Issue{Line: n, Text: line, Reason: reason})
	}

	var pose Pose // open pose block, nil when closed
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			pose = nil
			continue
		}
		fields := strings.Fields(line)

		switch {
		case fields[0] == "bpm":
			pose = nil
			bpm, err := arg(fields)
			if err != nil || bpm <= 0 {
				skip(n, line, "bad bpm")
				continue
			}
			s.BPM = bpm

		case fields[0] == "source":
			pose = nil
			if len(fields) < 2 {
				skip(n, line, "missing source name")
				continue
			}
			s.Sources = appendUnique(s.Sources, strings.TrimSpace(line[len("source"):]))

		case clipRe.MatchString(line):
			pose = nil
			m := clipRe.FindStringSubmatch(line)
			start, end, ok := parseRange(m[3])
			if !ok {
				skip(n, line, "bad clip range")
				continue
			}
			s.Clips[m[1]] = ClipDef{Name: m[1], Source: m[2], Start: start, End: end}

		case poseHeaderRe.MatchString(line):
			name := poseHeaderRe.FindStringSubmatch(line)[1]
			pose = make(Pose)
			s.Poses[name] = pose

		case entryRe.MatchString(line):
			pose = nil
			e, bad := parseEntry(entryRe.FindStringSubmatch(line))
			e.Line = n
			if len(bad) > 0 {
				skip(n, line, "unknown modifiers "+strings.Join(bad, " "))
			}
			s.Sequence = append(s.Sequence, e)

		case pose != nil:
			name, data, bad := dsl.ParseBone(fields)
			if len(bad) > 0 {
				skip(n, line, "unknown tokens "+strings.Join(bad, " "))
			}
			pose[name] = data

		default:
			skip(n, line, "unrecognised line")
		}
	}

	s.checkReferences()
	return s
}

func parseEntry(m []string) (Entry, []string) {
	measure, _ := strconv.Atoi(m[1])
	beat, _ := strconv.Atoi(m[2])
	tokens := strings.Fields(m[4])
	e := Entry{Measure: measure, Beat: beat, Kind: Kind(m[3]), Name: tokens[0]}

	var bad []string
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "mirror":
			e.Mirror = true
		case "reverse":
			e.Reverse = true
		case "speed", "hold":
			v, err := arg(tokens[i:])
			i++
			if err != nil || v <= 0 {
				bad = append(bad, tok)
				continue
			}
			if tok == "speed" {
				e.Speed = v
			} else {
				e.Hold = v
			}
		default:
			if ease, ok := motion.ParseEasing(tok); ok {
				e.Ease = ease
				continue
			}
			bad = append(bad, tok)
		}
	}
	return e, bad
}

// checkReferences flags entries naming clips or poses the script never
// defines. Expand skips unknown clips and treats unknown poses as rest.
func (s *Script) checkReferences() {
	for _, e := range s.Sequence {
		switch e.Kind {
		case KindClip:
			if _, ok := s.Clips[e.Name]; !ok {
				s.Issues = append(s.Issues, dsl.Issue{Line: e.Line, Text: e.Name, Reason: "unknown clip"})
			}
		case KindPose:
			if _, ok := s.Poses[e.Name]; !ok && e.Name != RestPose {
				s.Issues = append(s.Issues, dsl.Issue{Line: e.Line, Text: e.Name, Reason: "unknown pose"})
			}
		}
	}
}

// parseRange reads "<start>-<end>".
func parseRange(r string) (start, end float64, ok bool) {
	a, b, found := strings.Cut(r, "-")
	if !found {
		return 0, 0, false
	}
	start, err1 := strconv.ParseFloat(a, 64)
	end, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil || end < start {
		return 0, 0, false
	}
	return start, end, true
}

func arg(fields []string) (float64, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("%s: missing value", fields[0])
	}
	return strconv.ParseFloat(fields[1], 64)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
