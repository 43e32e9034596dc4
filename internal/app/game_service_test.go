package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

// stubSupply returns a fixed question list and counts calls so tests can
// observe the next-game prebuild.
type stubSupply struct {
	calls int
	seeds []int64
	err   error
}

func (s *stubSupply) GenerateSessionQuestions(_ context.Context, seed int64) ([]domain.Question, error) {
	s.calls++
	s.seeds = append(s.seeds, seed)
	if s.err != nil {
		return nil, s.err
	}
	questions := make([]domain.Question, 20)
	for i := range questions {
		questions[i] = domain.Question{
			Type:          domain.QuestionConsumption,
			Prompt:        "How much energy does it take?",
			AnswerChoices: []string{"100", "200", "300"},
			CorrectAnswer: "100",
		}
	}
	return questions, nil
}

func newTestService(supply *stubSupply) *app.GameService {
	clock := time.UnixMilli(1_000_000)
	return app.NewGameServiceWithClock(memory.NewSessionStore(), supply, app.StandardScorer{}, func() time.Time { return clock })
}

func TestStartGameAssignsSequentialIDs(t *testing.T) {
	supply := &stubSupply{}
	service := newTestService(supply)

	for want := int64(0); want < 3; want++ {
		id, err := service.StartGame(context.Background())
		if err != nil {
			t.Fatalf("start game: %v", err)
		}
		if id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
	}
	// Each start consumes the prepared game and builds the next, plus the
	// lazy build on the very first call.
	if supply.calls != 4 {
		t.Fatalf("supply called %d times", supply.calls)
	}
	if supply.seeds[0] != 0 || supply.seeds[1] != 1 {
		t.Fatalf("unexpected seeds %v", supply.seeds)
	}
}

func TestStartGameSurfacesSupplyFailure(t *testing.T) {
	supply := &stubSupply{err: errors.New("catalog unavailable")}
	service := newTestService(supply)

	if _, err := service.StartGame(context.Background()); err == nil {
		t.Fatal("expected error from failing supply")
	}

	// Recovery: once the supply works again the first game still gets id 0.
	supply.err = nil
	id, err := service.StartGame(context.Background())
	if err != nil {
		t.Fatalf("start after recovery: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected id 0, got %d", id)
	}
}

func TestGetStateAfterStart(t *testing.T) {
	service := newTestService(&stubSupply{})
	id, err := service.StartGame(context.Background())
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	state, err := service.GetState(id)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Phase != domain.PhaseStarting {
		t.Fatalf("expected STARTING, got %s", state.Phase)
	}
	if _, err := service.GetState(99); err != domain.ErrSessionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddPlayerAndSubmitFlow(t *testing.T) {
	service := newTestService(&stubSupply{})
	id, _ := service.StartGame(context.Background())

	player, err := service.AddPlayer(id, "alice")
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if player.Username != "alice" || !player.TimeAttackJoker {
		t.Fatalf("unexpected player %+v", player)
	}
	if _, err := service.AddPlayer(id, "alice"); err != domain.ErrDuplicateUsername {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := service.AddPlayer(99, "bob"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	sub := domain.Submission{GameID: id, Round: 0, Username: "alice", Answer: "100", SubmittedAt: 5}
	echoed, err := service.SubmitAnswer(sub)
	if err != nil || echoed != sub {
		t.Fatalf("submit: %v %+v", err, echoed)
	}
	if _, err := service.SubmitAnswer(domain.Submission{GameID: 99}); err != domain.ErrSessionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUseJokerUnknownSessionIsNotApplied(t *testing.T) {
	service := newTestService(&stubSupply{})
	id, _ := service.StartGame(context.Background())
	_, _ = service.AddPlayer(id, "alice")

	if !service.UseJoker(id, "alice", app.JokerDoublePoints) {
		t.Fatal("expected joker to apply")
	}
	if service.UseJoker(99, "alice", app.JokerDoublePoints) {
		t.Fatal("joker on unknown session must not apply")
	}
	if service.UseJoker(id, "ghost", app.JokerDoublePoints) {
		t.Fatal("joker for unknown player must not apply")
	}
}

func TestAddReaction(t *testing.T) {
	service := newTestService(&stubSupply{})
	id, _ := service.StartGame(context.Background())

	reaction := domain.Reaction{Username: "alice", Emoji: "🔥"}
	echoed, err := service.AddReaction(id, reaction)
	if err != nil || echoed != reaction {
		t.Fatalf("reaction: %v %+v", err, echoed)
	}
	state, _ := service.GetState(id)
	if len(state.Reactions) != 1 || state.Reactions[0] != reaction {
		t.Fatalf("reaction not in snapshot: %+v", state.Reactions)
	}
}
