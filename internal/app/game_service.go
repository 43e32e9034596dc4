package app

import (
	"context"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// SessionStore abstracts how live sessions are tracked (in-memory, or
// in-memory with Redis liveness markers for multi-instance awareness).
type SessionStore interface {
	Save(s *Session)
	Get(id int64) (*Session, bool)
	// NextID returns max(existing ids)+1, or 0 when no session is tracked.
	NextID() int64
}

// QuestionSupply produces the fixed, ordered question list for a new
// session. Seeded by the session id so creation is repeatable.
type QuestionSupply interface {
	GenerateSessionQuestions(ctx context.Context, seed int64) ([]domain.Question, error)
}

// GameService owns every live multiplayer session and is the single write
// path into them. Mutation of a session happens under that session's own
// lock; the service mutex only serializes game creation, which is the one
// place the (slow) question supply is consulted.
type GameService struct {
	mu       sync.Mutex
	sessions SessionStore
	supply   QuestionSupply
	scorer   Scorer
	now      func() time.Time

	// nextGame is built ahead of time so that starting a game from the
	// queue does not wait on question generation.
	nextGame *Session
}

func NewGameService(sessions SessionStore, supply QuestionSupply, scorer Scorer) *GameService {
	return NewGameServiceWithClock(sessions, supply, scorer, time.Now)
}

// NewGameServiceWithClock allows deterministic time in tests.
func NewGameServiceWithClock(sessions SessionStore, supply QuestionSupply, scorer Scorer, now func() time.Time) *GameService {
	return &GameService{sessions: sessions, supply: supply, scorer: scorer, now: now}
}

// StartGame promotes the prepared session to STARTING, scheduled three
// seconds out, and immediately prepares the next one. Called by the queue
// whenever a lobby fires its start signal.
func (g *GameService) StartGame(ctx context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nextGame == nil {
		next, err := g.createNextGameLocked(ctx)
		if err != nil {
			return 0, err
		}
		g.nextGame = next
	}

	game := g.nextGame
	g.nextGame = nil
	game.start()
	g.sessions.Save(game)

	// Best effort: if the supply fails here the next StartGame retries.
	if next, err := g.createNextGameLocked(ctx); err == nil {
		g.nextGame = next
	}
	return game.ID(), nil
}

func (g *GameService) createNextGameLocked(ctx context.Context) (*Session, error) {
	id := g.sessions.NextID()
	questions, err := g.supply.GenerateSessionQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSession(id, questions, g.scorer, g.now), nil
}

// GetState returns an up-to-date snapshot, advancing the session by at
// most one phase step if its deadline passed.
func (g *GameService) GetState(id int64) (domain.GameState, error) {
	session, ok := g.sessions.Get(id)
	if !ok {
		return domain.GameState{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// AddPlayer joins a player into a session. The session is brought up to
// date first, so a join can itself fire a pending transition.
func (g *GameService) AddPlayer(id int64, username string) (domain.Player, error) {
	session, ok := g.sessions.Get(id)
	if !ok {
		return domain.Player{}, domain.ErrSessionNotFound
	}
	session.Snapshot()
	return session.AddPlayer(username)
}

// SubmitAnswer appends the raw submission to its session's current round
// buffer and echoes it back. There is no round cross-check and no phase
// advancement here; a submission racing a transition is accepted into
// whichever buffer is current.
func (g *GameService) SubmitAnswer(sub domain.Submission) (domain.Submission, error) {
	session, ok := g.sessions.Get(sub.GameID)
	if !ok {
		return domain.Submission{}, domain.ErrSessionNotFound
	}
	session.AddSubmission(sub)
	return sub, nil
}

// UseJoker applies a power-up and reports whether it took effect. An
// unknown session, like any other invalid use, is a plain not-applied.
func (g *GameService) UseJoker(id int64, username, action string) bool {
	session, ok := g.sessions.Get(id)
	if !ok {
		return false
	}
	return session.UseJoker(username, action)
}

// AddReaction appends an emoji reaction to the session's chat log.
func (g *GameService) AddReaction(id int64, r domain.Reaction) (domain.Reaction, error) {
	session, ok := g.sessions.Get(id)
	if !ok {
		return domain.Reaction{}, domain.ErrSessionNotFound
	}
	session.AddReaction(r)
	return r, nil
}
