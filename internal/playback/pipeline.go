// Package playback plays compiled clips in real time.
package playback

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/satindergrewal/figura/internal/motion"
)

// Status is a snapshot of the pipeline.
type Status struct {
	Clip     string  `json:"clip"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Speed    float64 `json:"speed"`
	Playing  bool    `json:"playing"`
}

// Pipeline samples the current clip every frame and emits poses at
// real-time rate. Clips are swapped wholesale and crossfaded.
type Pipeline struct {
	frameCh      chan Frame
	crossfadeDur time.Duration

	mu       sync.RWMutex
	clip     *motion.Clip
	position float64
	speed    float64
	playing  bool

	// outgoing clip while a crossfade runs
	prev      *motion.Clip
	prevPos   float64
	fadeFrame int
	fadeTotal int
}

// NewPipeline creates a playing pipeline with the given crossfade duration
// applied when the clip changes.
func NewPipeline(crossfadeDuration time.Duration) *Pipeline {
	return &Pipeline{
		frameCh:      make(chan Frame, 30),
		crossfadeDur: crossfadeDuration,
		speed:        1,
		playing:      true,
	}
}

// Frames returns the channel of outgoing frames.
func (p *Pipeline) Frames() <-chan Frame {
	return p.frameCh
}

// SetClip replaces the playing clip. The playhead keeps its time, clamped
// to the new duration.
func (p *Pipeline) SetClip(c *motion.Clip) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	frames := int(p.crossfadeDur / motion.FrameDuration)
	if p.clip != nil && frames > 0 {
		p.prev, p.prevPos = p.clip, p.position
		p.fadeFrame, p.fadeTotal = 0, frames
	}
	p.clip = c
	p.position = clamp(p.position, c.Duration())
	log.Printf("Now playing: %s (%.2fs, %d bones)", c.Name(), c.Duration(), len(c.Bones()))
}

// Clip returns the playing clip, or nil.
func (p *Pipeline) Clip() *motion.Clip {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clip
}

func (p *Pipeline) Play() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
}

func (p *Pipeline) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

// SetSpeed sets the playback rate. Non-positive rates are ignored.
func (p *Pipeline) SetSpeed(speed float64) bool {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return false
	}
	p.mu.Lock()
	p.speed = speed
	p.mu.Unlock()
	return true
}

// SetTime moves the playhead, clamped to [0, duration].
func (p *Pipeline) SetTime(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := 0.0
	if p.clip != nil {
		d = p.clip.Duration()
	}
	p.position = clamp(t, d)
}

// Status returns current playback info.
func (p *Pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Status{Time: p.position, Speed: p.speed, Playing: p.playing}
	if p.clip != nil {
		s.Clip = p.clip.Name()
		s.Duration = p.clip.Duration()
	}
	return s
}

// Run emits one frame per tick. Blocks until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.frameCh)

	ticker := time.NewTicker(motion.FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, ok := p.step(motion.FrameTime)
		if !ok {
			continue
		}
		select {
		case p.frameCh <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// step advances the playhead by dt seconds of wall time and samples it.
func (p *Pipeline) step(dt float64) (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clip == nil {
		return Frame{}, false
	}

	if p.playing {
		p.position = advance(p.position, dt*p.speed, p.clip.Duration())
	}
	pose := p.clip.Pose(p.position)

	if p.prev != nil {
		if p.playing {
			p.prevPos = advance(p.prevPos, dt*p.speed, p.prev.Duration())
		}
		p.fadeFrame++
		pose = Crossfade(p.prev.Pose(p.prevPos), pose, float64(p.fadeFrame)/float64(p.fadeTotal))
		if p.fadeFrame >= p.fadeTotal {
			p.prev = nil
		}
	}
	return Frame{Time: p.position, Clip: p.clip.Name(), Bones: pose}, true
}

// advance moves t forward by d, looping at duration.
func advance(t, d, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	t += d
	if t > duration {
		t = math.Mod(t, duration)
	}
	return t
}

func clamp(t, duration float64) float64 {
	return math.Max(0, math.Min(duration, t))
}
