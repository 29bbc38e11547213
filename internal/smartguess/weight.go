package smartguess

import (
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/model"
)

// ProximityWeight decays smoothly with distance in meters. It lies in (0, 1]
// and there is no cutoff radius.
func ProximityWeight(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

// TrustWeight is max(0, confidence-errors) / max(1, confidence).
func TrustWeight(confidence, errorCount int) float64 {
	return float64(max(0, confidence-errorCount)) / float64(max(1, confidence))
}

// VoteWeight is the contribution of g to its category's score at target.
func VoteWeight(g model.SmartGuess, target geo.Coordinate) float64 {
	return ProximityWeight(geo.Distance(g.Coordinate(), target)) * TrustWeight(g.Confidence, g.ErrorCount)
}

// elect sums vote weights per category and returns the heaviest single
// voter of the best category. A zero best score or a tie for first place
// elects nothing.
func elect(guesses []model.SmartGuess, target geo.Coordinate) *model.SmartGuess {
	if len(guesses) == 0 {
		return nil
	}

	type tally struct {
		score  float64
		leader int
		top    float64
	}
	scores := make(map[model.Category]*tally)
	var order []model.Category
	for i, g := range guesses {
		w := VoteWeight(g, target)
		t, ok := scores[g.Category]
		if !ok {
			t = &tally{leader: i, top: w}
			scores[g.Category] = t
			order = append(order, g.Category)
		} else if w > t.top {
			t.leader, t.top = i, w
		}
		t.score += w
	}

	var best *tally
	tied := false
	for _, c := range order {
		t := scores[c]
		switch {
		case best == nil || t.score > best.score:
			best, tied = t, false
		case t.score == best.score:
			tied = true
		}
	}
	if best.score == 0 || tied {
		return nil
	}

	winner := guesses[best.leader]
	return &winner
}
