package weather

// Recommendation thresholds in Celsius.
const (
	coldBelow = 15.0
	hotAbove  = 30.0
)

// Recommendations returns clothing and safety hints for an observation.
func Recommendations(obs *Observation) []string {
	if obs == nil {
		return nil
	}

	var tips []string
	switch {
	case obs.Temperature < coldBelow:
		tips = append(tips, "Wear warm clothes")
	case obs.Temperature > hotAbove:
		tips = append(tips, "Stay hydrated")
	}

	switch obs.Condition {
	case ConditionRain, ConditionDrizzle:
		tips = append(tips, "Carry an umbrella")
	case ConditionSnow:
		tips = append(tips, "Wear a jacket")
	case ConditionThunderstorm:
		tips = append(tips, "Stay indoors")
	}

	return tips
}
