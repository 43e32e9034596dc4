package app

import (
	"fmt"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// Phase durations are fixed contracts of the game, not tunables.
const (
	startingMillis    int64 = 3000
	questionMillis    int64 = 8000
	transitionMillis  int64 = 3000
	leaderboardMillis int64 = 5000

	questionsPerGame = 20
	finalRound       = questionsPerGame - 1
	leaderboardEvery = 5
)

// Session is one multiplayer game. All fields are guarded by mu; phase
// advancement happens as a side effect of taking a snapshot, so even reads
// go through the exclusive lock. Sessions for different ids never contend.
type Session struct {
	mu sync.Mutex

	id              int64
	phase           domain.Phase
	round           int
	questions       []domain.Question
	nextPhaseAt     int64
	players         []*domain.Player
	submissions     []domain.Submission
	timeAttacksUsed int
	reactions       []domain.Reaction

	scorer Scorer
	now    func() time.Time
}

// NewSession is exported for infrastructure layers and tests that need to
// seed sessions directly; the service normally creates them itself.
func NewSession(id int64, questions []domain.Question, scorer Scorer) *Session {
	return newSession(id, questions, scorer, time.Now)
}

func newSession(id int64, questions []domain.Question, scorer Scorer, now func() time.Time) *Session {
	return &Session{
		id:          id,
		phase:       domain.PhaseNotStarted,
		round:       -1,
		questions:   questions,
		nextPhaseAt: domain.UnreachableTime,
		scorer:      scorer,
		now:         now,
	}
}

// ID returns the session's id. Safe without the lock: ids are immutable.
func (s *Session) ID() int64 {
	return s.id
}

// start schedules the first question. The STARTING phase lasts three
// seconds counted from the moment the queue fires, so that clients can
// show a countdown before round 0.
func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = domain.PhaseStarting
	s.nextPhaseAt = s.now().UnixMilli() + startingMillis
}

// Snapshot advances the session by at most one phase step if its deadline
// has passed, then returns a consistent copy of the state. This is the
// only driver of the state machine: there is no scheduler, every poll
// pushes the game forward. A client that polls rarely sees the machine
// catch up one step per poll rather than jumping phases in bulk.
func (s *Session) Snapshot() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now().UnixMilli() >= s.nextPhaseAt {
		s.switchStateLocked()
	}
	return s.snapshotLocked()
}

func (s *Session) switchStateLocked() {
	switch s.phase {
	case domain.PhaseStarting:
		s.switchToQuestionLocked()
	case domain.PhaseQuestion:
		s.switchToTransitionLocked()
	case domain.PhaseTransition:
		switch {
		case s.round >= finalRound:
			s.switchToGameOverLocked()
		case s.round%leaderboardEvery == leaderboardEvery-1:
			// Intermittent leaderboard after rounds 4, 9 and 14.
			s.switchToLeaderboardLocked()
		default:
			s.switchToQuestionLocked()
		}
	case domain.PhaseLeaderboard:
		s.switchToQuestionLocked()
	}
	// NOT_STARTED and GAME_OVER never advance.
}

func (s *Session) switchToQuestionLocked() {
	s.timeAttacksUsed = 0
	s.round++
	if s.round < 0 || s.round > finalRound {
		panic(fmt.Sprintf("session %d: round number %d out of range", s.id, s.round))
	}
	s.phase = domain.PhaseQuestion
	// Deadlines chain from the previous one, not from wall clock, so a
	// delayed poll does not shift the cumulative schedule.
	s.nextPhaseAt += questionMillis
}

func (s *Session) switchToTransitionLocked() {
	s.phase = domain.PhaseTransition
	s.updateScoresLocked()
	s.submissions = s.submissions[:0]
	s.nextPhaseAt += transitionMillis
}

func (s *Session) switchToLeaderboardLocked() {
	s.phase = domain.PhaseLeaderboard
	s.nextPhaseAt += leaderboardMillis
}

func (s *Session) switchToGameOverLocked() {
	s.phase = domain.PhaseGameOver
	s.nextPhaseAt = domain.UnreachableTime
}

// updateScoresLocked runs exactly once per round, at the QUESTION to
// TRANSITION switch, while nextPhaseAt still holds the question deadline.
// The scorer is invoked for every joined player, including those who never
// answered, so guess-type questions can award proximity credit.
func (s *Session) updateScoresLocked() {
	deadline := s.nextPhaseAt
	question := s.questions[s.round]
	for _, p := range s.players {
		var responses []domain.Submission
		for _, sub := range s.submissions {
			if sub.Username == p.Username {
				responses = append(responses, sub)
			}
		}
		final, ok := FinalAnswer(responses)
		if !ok {
			final = noAnswer(s.id, s.round, p.Username)
		}
		delta := s.scorer.Score(question, *p, final, deadline)
		if p.DoublePointsActive {
			delta *= 2
		}
		p.Score += delta
		p.DoublePointsActive = false
	}
}

// AddPlayer registers a new player. Usernames are case-sensitive and
// unique within the session; players are never removed.
func (s *Session) AddPlayer(username string) (domain.Player, error) {
	if username == "" {
		return domain.Player{}, domain.ErrInvalidUsername
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Username == username {
			return domain.Player{}, domain.ErrDuplicateUsername
		}
	}
	player := domain.NewPlayer(username)
	s.players = append(s.players, &player)
	return player, nil
}

// AddSubmission appends a raw answer event to the current round's buffer.
// The round number is recorded verbatim and deliberately not checked
// against the current round: a submission racing a phase switch lands in
// whatever buffer is current at append time.
func (s *Session) AddSubmission(sub domain.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
}

// AddReaction appends to the session's reaction log.
func (s *Session) AddReaction(r domain.Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append(s.reactions, r)
}

func (s *Session) snapshotLocked() domain.GameState {
	players := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, *p)
	}
	reactions := make([]domain.Reaction, len(s.reactions))
	copy(reactions, s.reactions)
	return domain.GameState{
		ID:              s.id,
		Phase:           s.phase,
		Round:           s.round,
		NextPhaseAt:     s.nextPhaseAt,
		Questions:       s.questions,
		Players:         players,
		TimeAttacksUsed: s.timeAttacksUsed,
		Reactions:       reactions,
	}
}
