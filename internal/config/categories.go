package config

// CategoryWeights orders categories in /help; lower sorts first.
var CategoryWeights = map[string]int{
	"🛡️ Moderation":   0,
	"🕯️ Information": 10,
	"⚙️ Settings":    50,
	"🛠️ Maintenance": 60,
}

// CategoryWeight returns the weight of cat, placing unknown categories last.
func CategoryWeight(cat string) int {
	if w, ok := CategoryWeights[cat]; ok {
		return w
	}
	return 1000
}
