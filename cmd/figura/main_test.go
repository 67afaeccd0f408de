package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/library"
	"github.com/satindergrewal/figura/internal/motion/synth"
	"github.com/satindergrewal/figura/internal/playback"
	"github.com/satindergrewal/figura/internal/studio"
)

// --- Demo source ---

func TestRegisterDemoDownloadsOnce(t *testing.T) {
	text := dsl.Generate(synth.Clip(demoSource, 2), 0.5)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(text))
	}))
	defer srv.Close()

	ctx := context.Background()
	lib := library.New()
	loader := library.NewLoader("", srv.URL)
	s := studio.New(lib, loader, playback.NewPipeline(0), studio.Config{})

	registerDemo(ctx, lib, loader, s)
	if !lib.Has(demoSource) {
		t.Fatal("demo source not registered")
	}
	if d, _ := lib.Duration(demoSource); d != 2 {
		t.Errorf("Duration = %v, want 2 from the recording", d)
	}

	script := "source pirouette\nclip a from pirouette 0-1\n@1:1 clip a\n"
	if err := s.Apply(ctx, "test", script); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("downloads = %d, want 1", got)
	}
}

func TestRegisterDemoFallsBackToSynthetic(t *testing.T) {
	lib := library.New()
	loader := library.NewLoader(t.TempDir(), "")
	s := studio.New(lib, loader, playback.NewPipeline(0), studio.Config{})

	registerDemo(context.Background(), lib, loader, s)
	d, err := lib.Duration(demoSource)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if d != synth.PirouetteDuration {
		t.Errorf("Duration = %v, want %v", d, synth.PirouetteDuration)
	}
	if !strings.Contains(strings.Join(lib.Sources(), ","), demoSource) {
		t.Errorf("Sources = %v", lib.Sources())
	}
}
