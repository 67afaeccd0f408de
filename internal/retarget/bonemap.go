package retarget

// BoneMap pairs Mixamo rig bone names with the short DSL names. It is read
// in both directions.
var BoneMap = map[string]string{
	"mixamorigHips":          "hip",
	"mixamorigSpine":         "abdomen",
	"mixamorigSpine2":        "chest",
	"mixamorigNeck":          "neck",
	"mixamorigHead":          "head",
	"mixamorigLeftShoulder":  "lCollar",
	"mixamorigLeftArm":       "lShldr",
	"mixamorigLeftForeArm":   "lForeArm",
	"mixamorigLeftHand":      "lHand",
	"mixamorigRightShoulder": "rCollar",
	"mixamorigRightArm":      "rShldr",
	"mixamorigRightForeArm":  "rForeArm",
	"mixamorigRightHand":     "rHand",
	"mixamorigLeftUpLeg":     "lThigh",
	"mixamorigLeftLeg":       "lShin",
	"mixamorigLeftFoot":      "lFoot",
	"mixamorigRightUpLeg":    "rThigh",
	"mixamorigRightLeg":      "rShin",
	"mixamorigRightFoot":     "rFoot",
}

var reverseMap = func() map[string]string {
	m := make(map[string]string, len(BoneMap))
	for rig, short := range BoneMap {
		m[short] = rig
	}
	return m
}()

// Counterpart returns the bone's name in the other naming convention.
func Counterpart(name string) (string, bool) {
	if n, ok := BoneMap[name]; ok {
		return n, true
	}
	n, ok := reverseMap[name]
	return n, ok
}
