package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ext is the file extension of stored low-level motion text.
const Ext = ".motion"

// Loader fetches recorded motions by source name. It looks in a local
// directory first and falls back to downloading from a base URL, caching
// what it downloads in the directory.
type Loader struct {
	dir     string
	baseURL string
	http    *http.Client
}

// NewLoader creates a loader. Either dir or baseURL may be empty.
func NewLoader(dir, baseURL string) *Loader {
	return &Loader{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Load returns the low-level text of the named source.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", &SourceError{Name: name, Err: fmt.Errorf("invalid source name")}
	}

	if l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, name+Ext))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", &SourceError{Name: name, Err: err}
		}
	}

	if l.baseURL == "" {
		return "", &SourceError{Name: name, Err: ErrSourceNotFound}
	}
	text, err := l.download(ctx, name)
	if err != nil {
		return "", &SourceError{Name: name, Err: err}
	}
	l.cache(name, text)
	return text, nil
}

// Ensure registers every name in names the library does not have yet.
func (l *Loader) Ensure(ctx context.Context, lib *Library, names []string) error {
	for _, name := range names {
		if lib.Has(name) {
			continue
		}
		text, err := l.Load(ctx, name)
		if err != nil {
			return err
		}
		lib.RegisterText(name, text)
		log.Printf("Registered source %q (%.2fs)", name, mustDuration(lib, name))
	}
	return nil
}

func mustDuration(lib *Library, name string) float64 {
	d, _ := lib.Duration(name)
	return d
}

// download fetches <baseURL>/<name>.motion.
func (l *Loader) download(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+name+Ext, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrSourceNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// cache writes downloaded text into the source directory. Failures only
// cost a re-download next time.
func (l *Loader) cache(name, text string) {
	if l.dir == "" {
		return
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		log.Printf("Cache %s: %v", name, err)
		return
	}
	if err := os.WriteFile(filepath.Join(l.dir, name+Ext), []byte(text), 0o644); err != nil {
		log.Printf("Cache %s: %v", name, err)
	}
}
