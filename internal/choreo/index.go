package choreo

import (
	"strconv"
	"strings"

	"github.com/satindergrewal/figura/internal/dsl"
)

// IndexLines maps every @measure:beat marker to its line, converting beats
// with the most recent bpm declared above it. Use dsl.LineForTime to look
// lines up.
func IndexLines(text string) []dsl.LineMark {
	var index []dsl.LineMark
	bpm := DefaultBPM
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == "bpm" {
			if v, err := arg(fields); err == nil && v > 0 {
				bpm = v
			}
		}
		m := markerRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		measure, _ := strconv.Atoi(m[1])
		beat, _ := strconv.Atoi(m[2])
		index = append(index, dsl.LineMark{Time: BeatToSeconds(measure, beat, bpm), Line: n})
	}
	return index
}
