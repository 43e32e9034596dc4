package app

import (
	"testing"
	"time"

	"trivia-service/internal/domain"
)

type fakeClock struct {
	ms int64
}

func (c *fakeClock) now() time.Time {
	return time.UnixMilli(c.ms)
}

// recordingScorer captures every scoring invocation and returns a fixed
// delta per username.
type recordingScorer struct {
	calls  []domain.Submission
	deltas map[string]int
}

func (r *recordingScorer) Score(_ domain.Question, player domain.Player, answer domain.Submission, _ int64) int {
	r.calls = append(r.calls, answer)
	return r.deltas[player.Username]
}

func testQuestions() []domain.Question {
	questions := make([]domain.Question, questionsPerGame)
	for i := range questions {
		questions[i] = domain.Question{
			Type:          domain.QuestionConsumption,
			Prompt:        "How much energy does it take?",
			AnswerChoices: []string{"100", "200", "300"},
			CorrectAnswer: "100",
		}
	}
	return questions
}

func newTestSession(t *testing.T, scorer Scorer) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	if scorer == nil {
		scorer = StandardScorer{}
	}
	session := newSession(0, testQuestions(), scorer, clock.now)
	return session, clock
}

func TestSessionStartsIdle(t *testing.T) {
	session, clock := newTestSession(t, nil)

	state := session.Snapshot()
	if state.Phase != domain.PhaseNotStarted || state.Round != -1 {
		t.Fatalf("expected idle session, got %s round %d", state.Phase, state.Round)
	}

	// Time alone never moves an unstarted session.
	clock.ms = 1 << 40
	state = session.Snapshot()
	if state.Phase != domain.PhaseNotStarted {
		t.Fatalf("unstarted session advanced to %s", state.Phase)
	}
}

func TestPhaseScheduleChainsFromPreviousDeadline(t *testing.T) {
	session, clock := newTestSession(t, nil)
	session.start()

	state := session.Snapshot()
	if state.Phase != domain.PhaseStarting || state.NextPhaseAt != 3000 {
		t.Fatalf("expected STARTING until 3000, got %s until %d", state.Phase, state.NextPhaseAt)
	}

	// Poll late: the question deadline still counts from 3000, not from now.
	clock.ms = 5000
	state = session.Snapshot()
	if state.Phase != domain.PhaseQuestion || state.Round != 0 {
		t.Fatalf("expected QUESTION round 0, got %s round %d", state.Phase, state.Round)
	}
	if state.NextPhaseAt != 3000+questionMillis {
		t.Fatalf("expected deadline %d, got %d", 3000+questionMillis, state.NextPhaseAt)
	}

	clock.ms = state.NextPhaseAt
	state = session.Snapshot()
	if state.Phase != domain.PhaseTransition {
		t.Fatalf("expected TRANSITION, got %s", state.Phase)
	}
	if state.NextPhaseAt != 3000+questionMillis+transitionMillis {
		t.Fatalf("expected deadline %d, got %d", 3000+questionMillis+transitionMillis, state.NextPhaseAt)
	}
}

func TestExactlyOneTransitionPerPoll(t *testing.T) {
	session, clock := newTestSession(t, nil)
	session.start()

	// Far beyond several phase deadlines: each poll still advances one step.
	clock.ms = 60_000
	phases := []domain.Phase{
		session.Snapshot().Phase,
		session.Snapshot().Phase,
		session.Snapshot().Phase,
		session.Snapshot().Phase,
	}
	want := []domain.Phase{
		domain.PhaseQuestion,
		domain.PhaseTransition,
		domain.PhaseQuestion,
		domain.PhaseTransition,
	}
	for i, phase := range phases {
		if phase != want[i] {
			t.Fatalf("poll %d: expected %s, got %s (bulk skip?)", i, want[i], phase)
		}
	}
}

// runToGameOver drives the session through its whole schedule, returning
// every observed (phase, round) pair.
func runToGameOver(t *testing.T, session *Session, clock *fakeClock) []domain.GameState {
	t.Helper()
	var states []domain.GameState
	for i := 0; i < 200; i++ {
		state := session.Snapshot()
		states = append(states, state)
		if state.Phase == domain.PhaseGameOver {
			return states
		}
		if state.NextPhaseAt == domain.UnreachableTime {
			t.Fatalf("unreachable deadline outside GAME_OVER in %s", state.Phase)
		}
		clock.ms = state.NextPhaseAt
	}
	t.Fatalf("session never reached GAME_OVER")
	return nil
}

func TestFullGameSchedule(t *testing.T) {
	session, clock := newTestSession(t, nil)
	session.start()

	states := runToGameOver(t, session, clock)

	leaderboardRounds := map[int]bool{}
	questionRounds := 0
	for _, state := range states {
		if state.Round < -1 || state.Round > finalRound {
			t.Fatalf("round %d out of range in %s", state.Round, state.Phase)
		}
		switch state.Phase {
		case domain.PhaseLeaderboard:
			leaderboardRounds[state.Round] = true
		case domain.PhaseQuestion:
			questionRounds++
		}
	}
	if questionRounds != questionsPerGame {
		t.Fatalf("expected %d question phases, got %d", questionsPerGame, questionRounds)
	}
	for round := range leaderboardRounds {
		if round != 4 && round != 9 && round != 14 {
			t.Fatalf("leaderboard shown after round %d", round)
		}
	}
	if len(leaderboardRounds) != 3 {
		t.Fatalf("expected leaderboards after rounds 4, 9 and 14, got %v", leaderboardRounds)
	}

	last := states[len(states)-1]
	if last.Round != finalRound || last.NextPhaseAt != domain.UnreachableTime {
		t.Fatalf("bad terminal state: round %d, deadline %d", last.Round, last.NextPhaseAt)
	}
}

func TestGameOverIsTerminal(t *testing.T) {
	session, clock := newTestSession(t, nil)
	session.start()
	runToGameOver(t, session, clock)

	clock.ms += 1 << 40
	for i := 0; i < 5; i++ {
		state := session.Snapshot()
		if state.Phase != domain.PhaseGameOver || state.Round != finalRound {
			t.Fatalf("session advanced past GAME_OVER: %s round %d", state.Phase, state.Round)
		}
	}
}

func TestScoringRunsOncePerPlayerPerRound(t *testing.T) {
	scorer := &recordingScorer{deltas: map[string]int{"alice": 10, "bob": 20}}
	session, clock := newTestSession(t, scorer)
	session.start()

	if _, err := session.AddPlayer("alice"); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if _, err := session.AddPlayer("bob"); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	clock.ms = 3000
	state := session.Snapshot() // STARTING -> QUESTION
	if state.Phase != domain.PhaseQuestion {
		t.Fatalf("expected QUESTION, got %s", state.Phase)
	}

	session.AddSubmission(domain.Submission{GameID: 0, SubmittedAt: 4000, Round: 0, Username: "alice", Answer: "100"})
	session.AddSubmission(domain.Submission{GameID: 0, SubmittedAt: 5000, Round: 0, Username: "bob", Answer: "200"})

	clock.ms = state.NextPhaseAt
	state = session.Snapshot() // QUESTION -> TRANSITION, scores computed
	if state.Phase != domain.PhaseTransition {
		t.Fatalf("expected TRANSITION, got %s", state.Phase)
	}
	if len(scorer.calls) != 2 {
		t.Fatalf("expected one scoring call per player, got %d", len(scorer.calls))
	}
	for _, p := range state.Players {
		want := scorer.deltas[p.Username]
		if p.Score != want {
			t.Fatalf("%s: expected score %d, got %d", p.Username, want, p.Score)
		}
	}

	// Polling again within TRANSITION must not score a second time.
	session.Snapshot()
	if len(scorer.calls) != 2 {
		t.Fatalf("scoring ran again on a plain poll, %d calls", len(scorer.calls))
	}
}

func TestAbsentPlayerScoredWithSentinel(t *testing.T) {
	scorer := &recordingScorer{deltas: map[string]int{}}
	session, clock := newTestSession(t, scorer)
	session.start()
	if _, err := session.AddPlayer("alice"); err != nil {
		t.Fatalf("add alice: %v", err)
	}

	clock.ms = 3000
	state := session.Snapshot()
	clock.ms = state.NextPhaseAt
	session.Snapshot()

	if len(scorer.calls) != 1 {
		t.Fatalf("expected sentinel scoring call, got %d calls", len(scorer.calls))
	}
	answer := scorer.calls[0]
	if answer.Answer != noAnswerText || answer.SubmittedAt != domain.UnreachableTime {
		t.Fatalf("expected no-answer sentinel, got %+v", answer)
	}
}

func TestStaleSubmissionContaminatesNextRound(t *testing.T) {
	scorer := &recordingScorer{deltas: map[string]int{}}
	session, clock := newTestSession(t, scorer)
	session.start()
	if _, err := session.AddPlayer("alice"); err != nil {
		t.Fatalf("add alice: %v", err)
	}

	clock.ms = 3000
	state := session.Snapshot() // QUESTION round 0
	clock.ms = state.NextPhaseAt
	session.Snapshot() // TRANSITION, round 0 buffer scored and cleared

	// Stale submission for round 0 arrives after the buffer was cleared.
	// By design it is accepted verbatim and lands in the next round's
	// buffer.
	session.AddSubmission(domain.Submission{GameID: 0, SubmittedAt: 11_500, Round: 0, Username: "alice", Answer: "300"})

	state = session.Snapshot() // no deadline passed, still TRANSITION
	clock.ms = state.NextPhaseAt
	state = session.Snapshot() // QUESTION round 1
	if state.Phase != domain.PhaseQuestion || state.Round != 1 {
		t.Fatalf("expected QUESTION round 1, got %s round %d", state.Phase, state.Round)
	}
	clock.ms = state.NextPhaseAt
	session.Snapshot() // TRANSITION round 1

	last := scorer.calls[len(scorer.calls)-1]
	if last.Answer != "300" || last.Round != 0 {
		t.Fatalf("expected the stale round-0 submission to be scored in round 1, got %+v", last)
	}
}

func TestAddPlayerRejectsDuplicatesAndEmpty(t *testing.T) {
	session, _ := newTestSession(t, nil)

	if _, err := session.AddPlayer(""); err != domain.ErrInvalidUsername {
		t.Fatalf("expected invalid username, got %v", err)
	}
	if _, err := session.AddPlayer("alice"); err != nil {
		t.Fatalf("add alice: %v", err)
	}
	if _, err := session.AddPlayer("alice"); err != domain.ErrDuplicateUsername {
		t.Fatalf("expected duplicate username, got %v", err)
	}
	// Case-sensitive: "Alice" is a different player.
	if _, err := session.AddPlayer("Alice"); err != nil {
		t.Fatalf("add Alice: %v", err)
	}
	if got := len(session.Snapshot().Players); got != 2 {
		t.Fatalf("expected 2 players, got %d", got)
	}
}

func TestReactionsAccumulate(t *testing.T) {
	session, _ := newTestSession(t, nil)
	session.AddReaction(domain.Reaction{Username: "alice", Emoji: "🎉"})
	session.AddReaction(domain.Reaction{Username: "bob", Emoji: "😱"})

	state := session.Snapshot()
	if len(state.Reactions) != 2 || state.Reactions[0].Username != "alice" {
		t.Fatalf("unexpected reaction log: %+v", state.Reactions)
	}
}
