package dsl

import (
	"strconv"
	"strings"
)

// LineMark ties a timeline position to a 0-based text line.
type LineMark struct {
	Time float64 `json:"time"`
	Line int     `json:"line"`
}

// IndexLines records the time and line of every @time marker.
func IndexLines(text string) []LineMark {
	var index []LineMark
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "@") {
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimPrefix(strings.Fields(line)[0], "@"), 64)
		if err != nil {
			continue
		}
		index = append(index, LineMark{Time: t, Line: n})
	}
	return index
}

// LineForTime returns the line of the latest marker at or before t, or -1
// when the index is empty or t precedes every marker. The index need not
// be sorted; among markers with equal times the later one wins.
func LineForTime(index []LineMark, t float64) int {
	line, best := -1, 0.0
	for _, m := range index {
		if m.Time > t {
			continue
		}
		if line == -1 || m.Time >= best {
			line, best = m.Line, m.Time
		}
	}
	return line
}
