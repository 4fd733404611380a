package intent

import "strings"

const (
	LabelForSure = "for_sure"
	LabelUnsure  = "unsure"
	LabelUnknown = "unknown"
)

type Result struct {
	Label   string   `json:"label"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

var highIntentTerms = []string{
	"buy", "purchase", "ready", "immediately", "site visit", "token", "advance",
}

var lowCommitmentTerms = []string{
	"explore", "checking", "just looking", "maybe", "not sure", "planning",
}

// Classify derives a purchase-intent label and score from free text. It is
// deterministic and case-insensitive. The keyword sets are not mutually
// exclusive; a text can trip both, in which case the for_sure rule wins.
func Classify(text string) Result {
	t := strings.ToLower(text)

	sure := containsAny(t, highIntentTerms)
	unsure := containsAny(t, lowCommitmentTerms)

	score := 10
	if strings.Contains(t, "budget") || strings.Contains(t, "lakh") || strings.Contains(t, "crore") {
		score += 15
	}
	if strings.Contains(t, "bhk") {
		score += 10
	}
	if strings.Contains(t, "rent") {
		score += 8
	}
	if strings.Contains(t, "plot") || strings.Contains(t, "land") {
		score += 8
	}
	if sure {
		score += 35
	}
	if unsure {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if sure && score >= 55 {
		return Result{Label: LabelForSure, Score: score, Reasons: []string{"high_intent_terms"}}
	}
	if unsure && score <= 60 {
		return Result{Label: LabelUnsure, Score: score, Reasons: []string{"low_commitment_terms"}}
	}
	return Result{Label: LabelUnknown, Score: score, Reasons: []string{}}
}

// FromInterestLevel maps a self-reported interest level from the landing form
// to a result. Declared interest is trusted more than keyword inference.
func FromInterestLevel(level string) Result {
	switch level {
	case "extremely_sure":
		return Result{Label: LabelForSure, Score: 95, Reasons: []string{"Marked extremely sure"}}
	case "highly_interested":
		return Result{Label: LabelForSure, Score: 85, Reasons: []string{"Marked highly interested"}}
	default:
		return Result{Label: LabelUnsure, Score: 60, Reasons: []string{"Marked interested"}}
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
