// Package studio runs the live edit loop: a script goes in, a retargeted
// clip comes out and replaces whatever the pipeline was playing.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/satindergrewal/figura/internal/choreo"
	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/library"
	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/playback"
	"github.com/satindergrewal/figura/internal/retarget"
	"github.com/satindergrewal/figura/internal/skeleton"
	"github.com/satindergrewal/figura/internal/watch"
)

// ErrUnknownExample is returned by ApplyExample for an id with no script.
var ErrUnknownExample = errors.New("unknown example")

// Config holds session parameters.
type Config struct {
	Target           *skeleton.Skeleton // nil uses the built-in Mixamo rig
	GenerateInterval float64            // sample spacing for registered motions
}

// Status is the state of the most recent apply.
type Status struct {
	Revision   int             `json:"revision"`
	Source     string          `json:"source"` // file path or example id
	Compiled   bool            `json:"compiled"`
	Error      string          `json:"error,omitempty"`
	Issues     []string        `json:"issues"`
	Duration   float64         `json:"duration"`
	Tracks     int             `json:"tracks"`
	Keyframes  int             `json:"keyframes"`
	Scale      float64         `json:"scale"`
	AppliedAt  time.Time       `json:"applied_at"`
	Playback   playback.Status `json:"playback"`
	ScriptLine int             `json:"line"`
}

// Session owns the source library and the retargeter, and feeds compiled
// clips to the pipeline.
type Session struct {
	lib        *library.Library
	loader     *library.Loader
	retargeter *retarget.Retargeter
	pipeline   *playback.Pipeline
	cfg        Config

	mu        sync.RWMutex
	source    string
	script    string
	lowLevel  string
	index     []dsl.LineMark
	issues    []dsl.Issue
	lastErr   error
	revision  int
	appliedAt time.Time
	keyframes int
}

// New creates a session. loader may be nil when every source is registered
// up front.
func New(lib *library.Library, loader *library.Loader, pipeline *playback.Pipeline, cfg Config) *Session {
	if cfg.Target == nil {
		cfg.Target = skeleton.Mixamo()
	}
	return &Session{
		lib:        lib,
		loader:     loader,
		retargeter: retarget.New(cfg.Target),
		pipeline:   pipeline,
		cfg:        cfg,
	}
}

// RegisterMotion adds a recorded motion as a named source.
func (s *Session) RegisterMotion(name string, m motion.Motion) {
	s.lib.RegisterMotion(name, m, s.cfg.GenerateInterval)
	log.Printf("Registered source %q (%.2fs)", name, m.Duration())
}

// Apply compiles script and, on success, swaps the result into the
// pipeline. On failure the previous clip keeps playing and the error is
// kept for Status.
func (s *Session) Apply(ctx context.Context, source, script string) error {
	sc := choreo.Parse(script)
	index := choreo.IndexLines(script)

	low, clip, err := s.compile(ctx, sc)

	s.mu.Lock()
	s.revision++
	s.source = source
	s.script = script
	s.issues = sc.Issues
	s.appliedAt = time.Now()
	s.lastErr = err
	if err == nil {
		// Line lookups follow the clip that is actually playing.
		s.index = index
		s.lowLevel = low
		s.keyframes = len(dsl.Parse(low).Keyframes)
	}
	rev := s.revision
	s.mu.Unlock()

	if err != nil {
		log.Printf("Script %s (rev %d) failed: %v", source, rev, err)
		return err
	}
	for _, is := range sc.Issues {
		log.Printf("Script %s: %s", source, is)
	}
	s.pipeline.SetClip(clip)
	return nil
}

func (s *Session) compile(ctx context.Context, sc *choreo.Script) (string, *motion.Clip, error) {
	if s.loader != nil {
		if err := s.loader.Ensure(ctx, s.lib, sc.Sources); err != nil {
			return "", nil, fmt.Errorf("load sources: %w", err)
		}
	}
	low, err := choreo.Expand(sc, s.lib)
	if err != nil {
		return "", nil, fmt.Errorf("expand: %w", err)
	}
	ref := skeleton.Reference()
	clip := dsl.Compile(dsl.Parse(low), ref)
	out, err := s.retargeter.Retarget(ref, clip)
	if err != nil {
		return "", nil, fmt.Errorf("retarget: %w", err)
	}
	return low, out, nil
}

// ApplyFile reads and applies the script at path.
func (s *Session) ApplyFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return s.Apply(ctx, path, string(data))
}

// ApplyExample applies a built-in script.
func (s *Session) ApplyExample(ctx context.Context, id string) error {
	ex, ok := choreo.LookupExample(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExample, id)
	}
	return s.Apply(ctx, ex.ID, ex.Script)
}

// Run re-applies the watched script each time it settles. Blocks until ctx
// is cancelled or events is closed.
func (s *Session) Run(ctx context.Context, events <-chan watch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Printf("Script changed: %s", ev.Path)
			// Apply logs its own failures.
			_ = s.ApplyFile(ctx, ev.Path)
		}
	}
}

// Script returns the most recently applied script text.
func (s *Session) Script() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.script
}

// LowLevel returns the keyframe text of the last successful compile.
func (s *Session) LowLevel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lowLevel
}

// Issues returns the lines the last apply skipped.
func (s *Session) Issues() []dsl.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dsl.Issue(nil), s.issues...)
}

// Err returns the error from the last apply, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LineForTime returns the line of the sequence entry active at t in the
// script of the playing clip, or -1.
func (s *Session) LineForTime(t float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dsl.LineForTime(s.index, t)
}

// Pipeline returns the playback pipeline the session feeds.
func (s *Session) Pipeline() *playback.Pipeline { return s.pipeline }

// Status returns the script state together with playback info.
func (s *Session) Status() Status {
	ps := s.pipeline.Status()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Revision:   s.revision,
		Source:     s.source,
		Compiled:   s.revision > 0 && s.lastErr == nil,
		Issues:     make([]string, 0, len(s.issues)),
		Keyframes:  s.keyframes,
		AppliedAt:  s.appliedAt,
		Playback:   ps,
		ScriptLine: dsl.LineForTime(s.index, ps.Time),
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	for _, is := range s.issues {
		st.Issues = append(st.Issues, is.String())
	}
	if c := s.pipeline.Clip(); c != nil {
		st.Duration = c.Duration()
		st.Tracks = len(c.Tracks())
	}
	st.Scale, _ = s.retargeter.Scale()
	return st
}
