package acuity

type Level string

const (
	LevelEmerging    Level = "emerging"
	LevelDeveloping  Level = "developing"
	LevelStrong      Level = "strong"
	LevelExceptional Level = "exceptional"
)

type Readiness struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var readiness = map[Level]Readiness{
	LevelEmerging: {
		Label:       "Emerging",
		Description: "Building a foundation. Seek out broader device and drip exposure on your next shifts.",
	},
	LevelDeveloping: {
		Label:       "Developing",
		Description: "A solid critical care base with room to deepen high-acuity experience.",
	},
	LevelStrong: {
		Label:       "Strong",
		Description: "Well-rounded high-acuity experience that competitive programs look for.",
	},
	LevelExceptional: {
		Label:       "Exceptional",
		Description: "Extensive exposure across complex devices, vasoactive drips and patient populations.",
	},
}

// LevelFor buckets a total score: <40 emerging, 40-59 developing,
// 60-79 strong, 80+ exceptional.
func LevelFor(total int) Level {
	switch {
	case total >= 80:
		return LevelExceptional
	case total >= 60:
		return LevelStrong
	case total >= 40:
		return LevelDeveloping
	default:
		return LevelEmerging
	}
}

func ReadinessFor(level Level) Readiness {
	return readiness[level]
}
