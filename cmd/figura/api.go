package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/satindergrewal/figura/internal/choreo"
	"github.com/satindergrewal/figura/internal/studio"
)

// maxScriptBytes bounds POST /api/script bodies.
const maxScriptBytes = 1 << 20

// listenerCounter reports connected preview clients.
type listenerCounter interface {
	ListenerCount() int
}

type peerCounter interface {
	PeerCount() int
}

type api struct {
	session   *studio.Session
	listeners listenerCounter
	peers     peerCounter
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encode response: %v", err)
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", a.status)
	mux.HandleFunc("/api/script", a.script)
	mux.HandleFunc("/api/lowlevel", a.lowLevel)
	mux.HandleFunc("/api/examples", a.examples)
	mux.HandleFunc("/api/example", a.example)
	mux.HandleFunc("/api/line", a.line)
	mux.HandleFunc("/api/play", a.play)
	mux.HandleFunc("/api/pause", a.pause)
	mux.HandleFunc("/api/seek", a.seek)
	mux.HandleFunc("/api/speed", a.speed)
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"session":          a.session.Status(),
		"http_listeners":   0,
		"webrtc_listeners": 0,
	}
	if a.listeners != nil {
		resp["http_listeners"] = a.listeners.ListenerCount()
	}
	if a.peers != nil {
		resp["webrtc_listeners"] = a.peers.PeerCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) script(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"source": a.session.Status().Source,
			"script": a.session.Script(),
		})
	case http.MethodPost:
		var req struct {
			Script string `json:"script"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxScriptBytes)).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := a.session.Apply(r.Context(), "api", req.Script); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"ok":     false,
				"error":  err.Error(),
				"status": a.session.Status(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": a.session.Status()})
	default:
		http.Error(w, "GET or POST required", http.StatusMethodNotAllowed)
	}
}

func (a *api) lowLevel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	io.WriteString(w, a.session.LowLevel())
}

func (a *api) examples(w http.ResponseWriter, r *http.Request) {
	type item struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	var list []item
	for _, e := range choreo.Examples() {
		list = append(list, item{ID: e.ID, Title: e.Title})
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *api) example(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		ex, ok := choreo.LookupExample(r.URL.Query().Get("id"))
		if !ok {
			http.Error(w, "unknown example", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, ex)
		return
	}
	if !requirePost(w, r) {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid example id", http.StatusBadRequest)
		return
	}
	if err := a.session.ApplyExample(r.Context(), req.ID); err != nil {
		if errors.Is(err, studio.ErrUnknownExample) {
			http.Error(w, "unknown example", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": req.ID})
}

// line maps a playback time to a script line. Without ?t it uses the
// current playhead.
func (a *api) line(w http.ResponseWriter, r *http.Request) {
	t := a.session.Pipeline().Status().Time
	if v := r.URL.Query().Get("t"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid time", http.StatusBadRequest)
			return
		}
		t = f
	}
	writeJSON(w, http.StatusOK, map[string]any{"time": t, "line": a.session.LineForTime(t)})
}

func (a *api) play(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	a.session.Pipeline().Play()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "playing": true})
}

func (a *api) pause(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	a.session.Pipeline().Pause()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "playing": false})
}

func (a *api) seek(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Time *float64 `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Time == nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	p := a.session.Pipeline()
	p.SetTime(*req.Time)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "time": p.Status().Time})
}

func (a *api) speed(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !a.session.Pipeline().SetSpeed(req.Speed) {
		http.Error(w, "speed must be positive", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "speed": req.Speed})
}
