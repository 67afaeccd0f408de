package motion

// Easing names an interpolation curve mapping [0,1] onto [0,1].
type Easing string

const (
	Linear    Easing = "linear"
	EaseIn    Easing = "ease-in"
	EaseOut   Easing = "ease-out"
	EaseInOut Easing = "ease-in-out"
)

// ParseEasing reports whether s is a known easing keyword.
func ParseEasing(s string) (Easing, bool) {
	switch e := Easing(s); e {
	case Linear, EaseIn, EaseOut, EaseInOut:
		return e, true
	}
	return "", false
}

// Apply evaluates the curve at t. Unknown or empty easings are linear.
func (e Easing) Apply(t float64) float64 {
	switch e {
	case EaseIn:
		return t * t
	case EaseOut:
		return t * (2 - t)
	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	}
	return t
}
