package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/satindergrewal/figura/internal/config"
	"github.com/satindergrewal/figura/internal/library"
	"github.com/satindergrewal/figura/internal/motion/synth"
	"github.com/satindergrewal/figura/internal/playback"
	"github.com/satindergrewal/figura/internal/skeleton"
	"github.com/satindergrewal/figura/internal/stream"
	"github.com/satindergrewal/figura/internal/studio"
	"github.com/satindergrewal/figura/internal/watch"
)

// demoSource is the source name the built-in example scripts use.
const demoSource = "pirouette"

// registerDemo makes the demo source available, preferring a real
// recording and falling back to the synthetic one.
func registerDemo(ctx context.Context, lib *library.Library, loader *library.Loader, session *studio.Session) {
	text, err := loader.Load(ctx, demoSource)
	if err != nil {
		log.Printf("No %s recording available (%v), using the synthetic one", demoSource, err)
		session.RegisterMotion(demoSource, synth.Pirouette())
		return
	}
	lib.RegisterText(demoSource, text)
	log.Printf("Registered source %q from recording", demoSource)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("figura starting up...")

	target := skeleton.Mixamo()
	if cfg.TargetSkeleton != "" {
		target, err = skeleton.Load(cfg.TargetSkeleton)
		if err != nil {
			log.Fatalf("Target skeleton: %v", err)
		}
	}
	log.Printf("Target skeleton: %s (%d bones)", target.Name, len(target.Names()))

	// Playback pipeline
	pipeline := playback.NewPipeline(cfg.Crossfade)
	if !pipeline.SetSpeed(cfg.PlaybackSpeed) {
		log.Printf("Ignoring playback speed %v", cfg.PlaybackSpeed)
	}
	go pipeline.Run(ctx)

	// Broadcaster: fan-out frames to all preview clients
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, pipeline.Frames())

	lib := library.New()
	loader := library.NewLoader(cfg.SourceDir, cfg.SourceURL)
	session := studio.New(lib, loader, pipeline, studio.Config{
		Target:           target,
		GenerateInterval: cfg.GenerateInterval,
	})
	registerDemo(ctx, lib, loader, session)

	if cfg.ScriptPath != "" {
		if err := session.ApplyFile(ctx, cfg.ScriptPath); err != nil {
			log.Printf("Initial script: %v", err)
		}
		w, err := watch.New(cfg.ScriptPath, cfg.Debounce)
		if err != nil {
			log.Fatalf("Watch %s: %v", cfg.ScriptPath, err)
		}
		defer w.Close()
		go session.Run(ctx, w.Events())
		log.Printf("Watching %s", w.Path())
	} else if err := session.ApplyExample(ctx, cfg.Example); err != nil {
		log.Printf("Example %q: %v", cfg.Example, err)
	}

	webrtcHandler := stream.NewWebRTCHandler(broadcaster)

	// HTTP routes
	mux := http.NewServeMux()
	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster))
	mux.Handle("/offer", webrtcHandler)
	(&api{session: session, listeners: broadcaster, peers: webrtcHandler}).routes(mux)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		server.Close()
	}()

	log.Printf("figura live on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}
