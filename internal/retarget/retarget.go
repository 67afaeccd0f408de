// Package retarget moves compiled clips onto a differently named skeleton.
package retarget

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/satindergrewal/figura/internal/motion"
	"github.com/satindergrewal/figura/internal/skeleton"
)

// ErrMissingRoot is returned when the target has no bone for the source
// root or the clip has no root position track.
var ErrMissingRoot = errors.New("missing root")

// Error describes a failed retarget.
type Error struct {
	Bone   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retarget %s: %s", e.Bone, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Retargeter renames and rescales clips for one target skeleton. The root
// scale is computed from the first clip and kept for every later one, so
// swapping clips does not change the character's height.
type Retargeter struct {
	target *skeleton.Skeleton

	mu     sync.Mutex
	scale  float64
	scaled bool
}

// New creates a retargeter for target.
func New(target *skeleton.Skeleton) *Retargeter {
	return &Retargeter{target: target}
}

// Target returns the skeleton clips are retargeted onto.
func (r *Retargeter) Target() *skeleton.Skeleton { return r.target }

// Scale returns the cached root scale and whether it has been set.
func (r *Retargeter) Scale() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scale, r.scaled
}

// Reset forgets the cached scale.
func (r *Retargeter) Reset() {
	r.mu.Lock()
	r.scale, r.scaled = 0, false
	r.mu.Unlock()
}

// Retarget maps clip, animated on source, onto the target skeleton.
// Rotations are copied unchanged under their mapped names; tracks for bones
// without a mapping or missing from the target are dropped. Root positions
// are multiplied by the cached scale.
func (r *Retargeter) Retarget(source *skeleton.Skeleton, clip *motion.Clip) (*motion.Clip, error) {
	srcRoot := motion.RootBone
	if source != nil {
		if b, ok := source.Root(); ok {
			srcRoot = b.Name
		}
	}

	dstRoot, ok := Counterpart(srcRoot)
	if !ok || !r.target.Has(dstRoot) {
		return nil, &Error{Bone: srcRoot, Reason: "target has no root bone", Err: ErrMissingRoot}
	}
	rootTrack, ok := clip.Track(srcRoot)
	if !ok || !rootTrack.HasPosition() {
		return nil, &Error{Bone: srcRoot, Reason: "clip has no root position track", Err: ErrMissingRoot}
	}

	scale := r.rootScale(dstRoot, rootTrack.Positions[0].Y)

	var tracks []motion.Track
	for _, tr := range clip.Tracks() {
		name, ok := Counterpart(tr.Bone)
		if !ok || !r.target.Has(name) {
			continue
		}
		out := motion.Track{Bone: name, Times: tr.Times, Rotations: tr.Rotations}
		if tr.Bone == srcRoot {
			out.PosTimes = tr.PosTimes
			out.Positions = make([]r3.Vec, len(tr.Positions))
			for i, p := range tr.Positions {
				out.Positions[i] = r3.Scale(scale, p)
			}
		}
		tracks = append(tracks, out)
	}
	return motion.NewClip(clip.Name(), clip.Duration(), r.target, tracks), nil
}

// rootScale returns the cached scale, computing it from srcHeight on first
// use.
func (r *Retargeter) rootScale(dstRoot string, srcHeight float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scaled {
		return r.scale
	}
	rest, _ := r.target.RestPosition(dstRoot)
	r.scale = 1
	if math.Abs(srcHeight) > 1e-9 {
		r.scale = rest.Y / srcHeight
	}
	r.scaled = true
	return r.scale
}
