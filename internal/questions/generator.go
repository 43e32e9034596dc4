// Package questions builds the fixed 20-question list for a game session
// from the energy-consumption activity catalog.
package questions

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"trivia-service/internal/domain"
)

// ActivityRepository provides the activity catalog backing question
// generation. Implementations cache aggressively; generation happens once
// per session, outside request hot paths.
type ActivityRepository interface {
	ListActivities(ctx context.Context) ([]domain.Activity, error)
}

// Generator derives questions deterministically from a seed, so two
// sessions with the same id over the same catalog get the same questions.
type Generator struct {
	activities ActivityRepository
}

func NewGenerator(activities ActivityRepository) *Generator {
	return &Generator{activities: activities}
}

const (
	questionsPerGame = 20
	easyQuestions    = 12
)

// GenerateSessionQuestions returns exactly 20 questions: 12 easy then 8
// hard ("hard" narrows the consumption range answer choices are drawn
// from, demanding more precision). Each difficulty bucket cycles through
// the four variants and is shuffled, keeping the easier bucket first.
func (g *Generator) GenerateSessionQuestions(ctx context.Context, seed int64) ([]domain.Question, error) {
	catalog, err := g.activities.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) < 4 {
		return nil, domain.ErrNotEnoughActivities
	}

	rnd := rand.New(rand.NewSource(seed))
	walk := newActivityWalk(catalog, rnd)

	var easy, hard []domain.Question
	for i := 0; i < questionsPerGame; i++ {
		difficult := i >= easyQuestions
		q, err := g.generateQuestion(walk, rnd, difficult, i)
		if err != nil {
			return nil, err
		}
		if difficult {
			hard = append(hard, q)
		} else {
			easy = append(easy, q)
		}
	}

	rnd.Shuffle(len(easy), func(i, j int) { easy[i], easy[j] = easy[j], easy[i] })
	rnd.Shuffle(len(hard), func(i, j int) { hard[i], hard[j] = hard[j], hard[i] })
	return append(easy, hard...), nil
}

func (g *Generator) generateQuestion(walk *activityWalk, rnd *rand.Rand, difficult bool, number int) (domain.Question, error) {
	switch number % 4 {
	case 0:
		return generateInstead(walk, rnd, difficult)
	case 1:
		return generateConsumption(walk, rnd, difficult)
	case 2:
		return generateMoreExpensive(walk, rnd, difficult)
	default:
		return generateGuess(walk, difficult), nil
	}
}

func generateConsumption(walk *activityWalk, rnd *rand.Rand, difficult bool) (domain.Question, error) {
	activity := walk.next()
	center := activity.Consumption

	candidates := distinctConsumptions(withinRange(walk.catalog, center, rangeMultiplier(difficult)), center)
	if len(candidates) < 2 {
		candidates = distinctConsumptions(walk.catalog, center)
	}
	if len(candidates) < 2 {
		return domain.Question{}, fmt.Errorf("consumption question: %w", domain.ErrNotEnoughActivities)
	}
	rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	choices := []string{
		strconv.FormatInt(center, 10),
		strconv.FormatInt(candidates[0], 10),
		strconv.FormatInt(candidates[1], 10),
	}
	rnd.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })

	return domain.Question{
		Type:          domain.QuestionConsumption,
		Prompt:        fmt.Sprintf("How much energy does %q take?", activity.Title),
		Activity:      activity,
		AnswerChoices: choices,
		CorrectAnswer: strconv.FormatInt(center, 10),
	}, nil
}

func generateMoreExpensive(walk *activityWalk, rnd *rand.Rand, difficult bool) (domain.Question, error) {
	center := walk.next().Consumption

	choices := withinRange(walk.catalog, center, rangeMultiplier(difficult))
	rnd.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	choices = choices[:3]

	correct := choices[0]
	for _, a := range choices[1:] {
		if a.Consumption > correct.Consumption {
			correct = a
		}
	}

	titles := make([]string, len(choices))
	for i, a := range choices {
		titles[i] = a.Title
	}
	return domain.Question{
		Type:          domain.QuestionMoreExpensive,
		Prompt:        "What activity has a higher energy consumption?",
		AnswerChoices: titles,
		CorrectAnswer: correct.Title,
	}, nil
}

func generateGuess(walk *activityWalk, difficult bool) domain.Question {
	activity := walk.next()

	// Very large consumptions are close to impossible to guess, so easy
	// questions only use activities at or below the catalog median.
	if !difficult {
		median := medianConsumption(walk.catalog)
		for i := 0; activity.Consumption > median && i < len(walk.catalog); i++ {
			activity = walk.next()
		}
	}

	return domain.Question{
		Type:          domain.QuestionGuess,
		Prompt:        fmt.Sprintf("Guess how much energy %q takes (in Wh).", activity.Title),
		Activity:      activity,
		CorrectAnswer: strconv.FormatInt(activity.Consumption, 10),
	}
}

func generateInstead(walk *activityWalk, rnd *rand.Rand, difficult bool) (domain.Question, error) {
	activity := walk.next()
	center := activity.Consumption

	// Correct answers are the closest consumption matches, incorrect ones
	// come from a much wider band.
	correct := excludeActivity(withinRange(walk.catalog, center, 1), activity)
	if len(correct) == 0 {
		return domain.Question{}, fmt.Errorf("instead question: %w", domain.ErrNotEnoughActivities)
	}
	incorrect := excludeActivities(withinRange(walk.catalog, center, rangeMultiplier(difficult)), correct, activity)
	if len(incorrect) < 2 {
		incorrect = excludeActivities(walk.catalog, correct, activity)
	}
	if len(incorrect) < 2 {
		return domain.Question{}, fmt.Errorf("instead question: %w", domain.ErrNotEnoughActivities)
	}

	rnd.Shuffle(len(correct), func(i, j int) { correct[i], correct[j] = correct[j], correct[i] })
	rnd.Shuffle(len(incorrect), func(i, j int) { incorrect[i], incorrect[j] = incorrect[j], incorrect[i] })

	choices := []string{correct[0].Title, incorrect[0].Title, incorrect[1].Title}
	answer := correct[0].Title
	rnd.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })

	return domain.Question{
		Type:          domain.QuestionInstead,
		Prompt:        fmt.Sprintf("Instead of %q, you could do what for the same energy?", activity.Title),
		Activity:      activity,
		AnswerChoices: choices,
		CorrectAnswer: answer,
	}, nil
}

func rangeMultiplier(difficult bool) int64 {
	if difficult {
		return 10
	}
	return 100
}

// withinRange returns activities whose consumption falls within
// [center/multiplier, center*multiplier], widening the band until at
// least four activities match. With a catalog of four or more this always
// terminates: the band eventually spans the whole catalog.
func withinRange(catalog []domain.Activity, center, multiplier int64) []domain.Activity {
	if center <= 0 {
		center = 1
	}
	for {
		lower, upper := center/multiplier, center*multiplier
		var result []domain.Activity
		for _, a := range catalog {
			if a.Consumption >= lower && a.Consumption <= upper {
				result = append(result, a)
			}
		}
		if len(result) >= 4 || upper < 0 || len(result) == len(catalog) {
			return result
		}
		multiplier++
	}
}

func distinctConsumptions(activities []domain.Activity, exclude int64) []int64 {
	seen := map[int64]bool{exclude: true}
	var result []int64
	for _, a := range activities {
		if !seen[a.Consumption] {
			seen[a.Consumption] = true
			result = append(result, a.Consumption)
		}
	}
	return result
}

func excludeActivity(activities []domain.Activity, subject domain.Activity) []domain.Activity {
	var result []domain.Activity
	for _, a := range activities {
		if a.ID != subject.ID {
			result = append(result, a)
		}
	}
	return result
}

func excludeActivities(activities, exclude []domain.Activity, subject domain.Activity) []domain.Activity {
	excluded := map[string]bool{subject.ID: true}
	for _, a := range exclude {
		excluded[a.ID] = true
	}
	var result []domain.Activity
	for _, a := range activities {
		if !excluded[a.ID] {
			result = append(result, a)
		}
	}
	return result
}

func medianConsumption(catalog []domain.Activity) int64 {
	consumptions := make([]int64, len(catalog))
	for i, a := range catalog {
		consumptions[i] = a.Consumption
	}
	sort.Slice(consumptions, func(i, j int) bool { return consumptions[i] < consumptions[j] })
	return consumptions[len(consumptions)/2]
}

// activityWalk hands out catalog entries in a shuffled round-robin, so a
// session does not repeat an activity until the whole catalog is used.
type activityWalk struct {
	catalog []domain.Activity
	order   []int
	index   int
}

func newActivityWalk(catalog []domain.Activity, rnd *rand.Rand) *activityWalk {
	order := rnd.Perm(len(catalog))
	return &activityWalk{catalog: catalog, order: order}
}

func (w *activityWalk) next() domain.Activity {
	activity := w.catalog[w.order[w.index]]
	w.index = (w.index + 1) % len(w.order)
	return activity
}
