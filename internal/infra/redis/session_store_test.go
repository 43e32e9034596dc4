package redis

import (
	"testing"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testQuestions() []domain.Question {
	questions := make([]domain.Question, 20)
	for i := range questions {
		questions[i] = domain.Question{
			Type:          domain.QuestionConsumption,
			AnswerChoices: []string{"1", "2", "3"},
			CorrectAnswer: "1",
		}
	}
	return questions
}

func TestSaveMarksLiveness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Hour)

	session := app.NewSession(4, testQuestions(), app.StandardScorer{})
	store.Save(session)

	got, ok := store.Get(4)
	if !ok || got != session {
		t.Fatalf("Get(4) = %v, %v", got, ok)
	}
	if !mr.Exists("game:session:4") {
		t.Fatal("liveness key missing after Save")
	}
}

func TestNextIDIgnoresRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Hour)

	if got := store.NextID(); got != 0 {
		t.Fatalf("empty store NextID = %d", got)
	}
	store.Save(app.NewSession(7, testQuestions(), app.StandardScorer{}))
	if got := store.NextID(); got != 8 {
		t.Fatalf("NextID = %d, want 8", got)
	}
}
