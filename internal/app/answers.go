package app

import (
	"math"
	"sort"

	"trivia-service/internal/domain"
)

// noAnswerText marks the sentinel submission of a player who never
// answered. It compares unequal to every real answer choice, so it always
// scores as wrong, while the maximal timestamp loses every tie-break.
const noAnswerText = "wrong answer"

func noAnswer(gameID int64, round int, username string) domain.Submission {
	return domain.Submission{
		GameID:      gameID,
		SubmittedAt: math.MaxInt64,
		Round:       round,
		Username:    username,
		Answer:      noAnswerText,
	}
}

// FinalAnswer reduces one player's raw submission stream for a round to
// the single authoritative answer. Reports false when the stream is empty.
//
// Submissions are walked in timestamp order; the retained answer is only
// replaced when the walked submission's choice differs from the retained
// one. Re-clicking the same choice therefore never refreshes the effective
// timestamp, while switching away and back counts as a new, later answer.
// Note the retained submission is the last one whose choice changed
// relative to the previously retained one, which is not necessarily the
// overall last submission. That asymmetry is relied upon by the scoring
// rules and must not be smoothed over.
func FinalAnswer(responses []domain.Submission) (domain.Submission, bool) {
	if len(responses) == 0 {
		return domain.Submission{}, false
	}
	sorted := make([]domain.Submission, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt < sorted[j].SubmittedAt
	})
	final := sorted[0]
	for _, sub := range sorted[1:] {
		if final.Answer != sub.Answer {
			final = sub
		}
	}
	return final, true
}
