package playback

import (
	"encoding/json"

	"github.com/satindergrewal/figura/internal/motion"
)

// Frame is one sampled pose of the playing clip.
type Frame struct {
	Time  float64
	Clip  string
	Bones map[string]motion.Transform
}

type wireBone struct {
	Q [4]float64  `json:"q"` // x y z w
	P *[3]float64 `json:"p,omitempty"`
}

type wireFrame struct {
	T     float64             `json:"t"`
	Clip  string              `json:"clip"`
	Bones map[string]wireBone `json:"bones"`
}

// MarshalJSON encodes rotations as [x y z w] and positions as [x y z].
func (f Frame) MarshalJSON() ([]byte, error) {
	w := wireFrame{T: f.Time, Clip: f.Clip, Bones: make(map[string]wireBone, len(f.Bones))}
	for name, x := range f.Bones {
		b := wireBone{Q: [4]float64{x.Rot.Imag, x.Rot.Jmag, x.Rot.Kmag, x.Rot.Real}}
		if x.Pos != nil {
			b.P = &[3]float64{x.Pos.X, x.Pos.Y, x.Pos.Z}
		}
		w.Bones[name] = b
	}
	return json.Marshal(w)
}
