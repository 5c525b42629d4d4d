package color

import "fmt"

// Rendering intents, numbered as in ICC profiles and the PNG sRGB chunk.
const (
	IntentPerceptual           = 0
	IntentRelativeColorimetric = 1
	IntentSaturation           = 2
	IntentAbsoluteColorimetric = 3
)

// ParseIntent converts a string intent name to its ICC intent number.
func ParseIntent(s string) (int, error) {
	switch s {
	case "perceptual", "":
		return IntentPerceptual, nil
	case "relative":
		return IntentRelativeColorimetric, nil
	case "saturation":
		return IntentSaturation, nil
	case "absolute":
		return IntentAbsoluteColorimetric, nil
	default:
		return 0, fmt.Errorf("unknown rendering intent: %q", s)
	}
}

// IntentName is the inverse of ParseIntent.
func IntentName(intent int) string {
	switch intent {
	case IntentPerceptual:
		return "perceptual"
	case IntentRelativeColorimetric:
		return "relative"
	case IntentSaturation:
		return "saturation"
	case IntentAbsoluteColorimetric:
		return "absolute"
	default:
		return fmt.Sprintf("intent(%d)", intent)
	}
}
