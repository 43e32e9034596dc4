package app

import (
	"strconv"
	"strings"

	"trivia-service/internal/domain"
)

// Scorer computes the score delta for one player's authoritative answer in
// one round. The engine guarantees it is called exactly once per joined
// player per round, sentinel answers included; doubling and accumulation
// happen outside, so implementations stay stateless.
//
// roundDeadline is the unix-millis end of the question window; the window
// opened questionMillis earlier.
type Scorer interface {
	Score(q domain.Question, player domain.Player, answer domain.Submission, roundDeadline int64) int
}

// StandardScorer awards a 100-point base plus a speed bonus of up to 100
// points that decays over the question window. A player's timer rate
// multiplies the decay, so victims of the time-attack joker run out of
// bonus sooner. Guess questions award proximity-scaled credit instead of
// all-or-nothing.
type StandardScorer struct{}

func (StandardScorer) Score(q domain.Question, player domain.Player, answer domain.Submission, roundDeadline int64) int {
	bonus := speedBonus(answer.SubmittedAt, roundDeadline, player.TimerRate)
	switch q.Type {
	case domain.QuestionGuess:
		return guessPoints(q.CorrectAnswer, answer.Answer, bonus)
	default:
		if answer.Answer == q.CorrectAnswer {
			return 100 + bonus
		}
		return 0
	}
}

func speedBonus(submittedAt, deadline int64, timerRate int) int {
	windowStart := deadline - questionMillis
	elapsed := submittedAt - windowStart
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > questionMillis {
		elapsed = questionMillis
	}
	if timerRate < 1 {
		timerRate = 1
	}
	remaining := questionMillis - elapsed*int64(timerRate)
	if remaining < 0 {
		remaining = 0
	}
	return int(100 * remaining / questionMillis)
}

// guessPoints scales the full reward linearly by relative error, so a
// guess twice the true value (or worse) earns nothing. Unparseable input,
// including the no-answer sentinel, earns zero.
func guessPoints(correctText, guessText string, bonus int) int {
	correct, err := strconv.ParseInt(strings.TrimSpace(correctText), 10, 64)
	if err != nil || correct <= 0 {
		return 0
	}
	guess, err := strconv.ParseInt(strings.TrimSpace(guessText), 10, 64)
	if err != nil || guess < 0 {
		return 0
	}
	diff := guess - correct
	if diff < 0 {
		diff = -diff
	}
	accuracy := 1 - float64(diff)/float64(correct)
	if accuracy <= 0 {
		return 0
	}
	return int(accuracy * float64(100+bonus))
}
