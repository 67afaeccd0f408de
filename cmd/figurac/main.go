// Command figurac compiles a choreography script to low-level keyframe text
// without starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/satindergrewal/figura/internal/choreo"
	"github.com/satindergrewal/figura/internal/dsl"
	"github.com/satindergrewal/figura/internal/library"
	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/motion/synth"
	"github.com/satindergrewal/figura/internal/skeleton"
)

type options struct {
	sources   string
	url       string
	output    string
	lint      bool
	synthetic bool
	generate  string
	interval  float64
	report    bool
	timeout   time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, opts.timeout)
	defer cancelTimeout()

	lib := library.New()
	loader := library.NewLoader(opts.sources, opts.url)
	if opts.synthetic {
		lib.RegisterMotion("pirouette", synth.Pirouette(), 0)
	}

	var out string
	switch {
	case opts.generate != "":
		out, err = generate(ctx, lib, loader, opts, stderr)
	case len(rest) != 1:
		fmt.Fprintln(stderr, "Error: expected exactly one script file")
		return 2
	case opts.lint:
		return lint(rest[0], stdout, stderr)
	default:
		out, err = compile(ctx, lib, loader, rest[0])
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.output == "" {
		io.WriteString(stdout, out)
		return 0
	}
	if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var opts options
	fs := flag.NewFlagSet("figurac", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sources, "sources", "motions", "Directory of <name>"+library.Ext+" source files")
	fs.StringVar(&opts.url, "url", "", "Base URL to download missing sources from")
	fs.StringVar(&opts.output, "o", "", "Write output to file instead of stdout")
	fs.BoolVar(&opts.lint, "lint", false, "Report skipped script lines and exit")
	fs.BoolVar(&opts.synthetic, "synthetic", false, "Register the synthetic pirouette source")
	fs.StringVar(&opts.generate, "generate", "", "Emit the named source as keyframe text")
	fs.Float64Var(&opts.interval, "interval", 0, "Sample spacing in seconds for -generate (0 keeps native timing)")
	fs.BoolVar(&opts.report, "report", false, "With -generate, print round-trip fidelity to stderr")
	fs.DurationVar(&opts.timeout, "timeout", time.Minute, "Give up loading sources after this long")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "figurac - compile choreography scripts\n\n")
		fmt.Fprintf(stderr, "Usage: figurac [options] script.fig\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  figurac show.fig                     Print keyframe text\n")
		fmt.Fprintf(stderr, "  figurac -lint show.fig               List skipped lines\n")
		fmt.Fprintf(stderr, "  figurac -generate pirouette -interval 0.1 -report\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	return opts, fs.Args(), nil
}

func compile(ctx context.Context, lib *library.Library, loader *library.Loader, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sc := choreo.Parse(string(data))
	if err := loader.Ensure(ctx, lib, sc.Sources); err != nil {
		return "", err
	}
	return choreo.Expand(sc, lib)
}

// lint lists skipped lines. Files ending in the source extension are
// checked as keyframe text, anything else as a script.
func lint(path string, stdout, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var issues []dsl.Issue
	if strings.HasSuffix(path, library.Ext) {
		issues = dsl.Lint(string(data))
	} else {
		issues = choreo.Parse(string(data)).Issues
	}
	for _, is := range issues {
		fmt.Fprintf(stdout, "%s:%d: %s: %q\n", path, is.Line+1, is.Reason, is.Text)
	}
	if len(issues) > 0 {
		return 1
	}
	return 0
}

func generate(ctx context.Context, lib *library.Library, loader *library.Loader, opts options, stderr io.Writer) (string, error) {
	if err := loader.Ensure(ctx, lib, []string{opts.generate}); err != nil {
		return "", err
	}
	d, err := lib.Duration(opts.generate)
	if err != nil {
		return "", err
	}
	seq, err := lib.Extract(opts.generate, 0, d)
	if err != nil {
		return "", err
	}

	ref := skeleton.Reference()
	src := named(dsl.Compile(seq, ref), opts.generate)
	out := dsl.Generate(src, opts.interval)

	if opts.report {
		back := dsl.Compile(dsl.Parse(out), ref)
		rep := dsl.Compare(src, back, 0)
		bone, worst := rep.Worst()
		fmt.Fprintf(stderr, "%d samples, worst bone %s %.3f° at %.3fs, root drift %.3fcm\n",
			rep.Samples, bone, worst.MaxDeg, worst.WorstTime, rep.RootMaxDist)
	}
	return out, nil
}

// named gives a compiled clip the source's name for the generated header.
func named(c *motion.Clip, name string) *motion.Clip {
	return motion.NewClip(name, c.Duration(), c.Skeleton(), c.Tracks())
}
