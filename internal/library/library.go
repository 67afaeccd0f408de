// Package library keeps named recorded motions and cuts rebased clips out of
// them.
package library

import (
	"sync"

	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/motion"
)

// Epsilon widens the extract window to absorb float noise in key times.
const Epsilon = 1e-6

// Library maps source names to recorded motions. Registration is
// last-writer-wins; readers always see a complete sequence.
type Library struct {
	mu      sync.RWMutex
	sources map[string]motion.Sequence
	order   []string
}

// New creates an empty library.
func New() *Library {
	return &Library{sources: make(map[string]motion.Sequence)}
}

// Register stores seq under name, replacing any earlier registration.
func (l *Library) Register(name string, seq motion.Sequence) {
	stored := motion.Sequence{
		Duration:  seq.Duration,
		Keyframes: append([]motion.Keyframe(nil), seq.Keyframes...),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sources[name]; !ok {
		l.order = append(l.order, name)
	}
	l.sources[name] = stored
}

// RegisterText parses low-level text and registers the result.
func (l *Library) RegisterText(name, text string) {
	l.Register(name, dsl.Parse(text))
}

// RegisterMotion converts a recorded motion to low-level text sampled every
// interval seconds (native times when interval <= 0) and registers it.
func (l *Library) RegisterMotion(name string, m motion.Motion, interval float64) {
	l.RegisterText(name, dsl.Generate(m, interval))
}

func (l *Library) get(name string) (motion.Sequence, error) {
	l.mu.RLock()
	seq, ok := l.sources[name]
	l.mu.RUnlock()
	if !ok {
		return motion.Sequence{}, &SourceError{Name: name, Err: ErrSourceNotRegistered}
	}
	return seq, nil
}

// Duration returns the registered duration of name.
func (l *Library) Duration(name string) (float64, error) {
	seq, err := l.get(name)
	if err != nil {
		return 0, err
	}
	return seq.Duration, nil
}

// Extract returns the keyframes of name inside [start, end], rebased so the
// window starts at zero. A window that misses the source yields no keyframes
// and no error. Returned keyframes share nothing with the library.
func (l *Library) Extract(name string, start, end float64) (motion.Sequence, error) {
	seq, err := l.get(name)
	if err != nil {
		return motion.Sequence{}, err
	}

	out := motion.Sequence{Duration: end - start}
	for _, kf := range seq.Keyframes {
		if kf.Time < start-Epsilon || kf.Time > end+Epsilon {
			continue
		}
		bones := make(map[string]motion.BoneData, len(kf.Bones))
		for b, d := range kf.Bones {
			bones[b] = d.Clone()
		}
		out.Keyframes = append(out.Keyframes, motion.Keyframe{Time: kf.Time - start, Bones: bones})
	}
	return out, nil
}

// Has reports whether name is registered.
func (l *Library) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sources[name]
	return ok
}

// Sources lists registered names in registration order.
func (l *Library) Sources() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}
