package app

import (
	"context"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// Queue is the lobby players wait in before a multiplayer game begins.
// When anyone triggers Start, the registered hook creates the session and
// the queue advertises its id so waiting clients know where to join.
type Queue struct {
	mu         sync.Mutex
	users      []domain.QueueUser
	starting   bool
	startAt    int64
	upcomingID int64
	onStart    func(context.Context) (int64, error)
	now        func() time.Time
}

func NewQueue() *Queue {
	return NewQueueWithClock(time.Now)
}

// NewQueueWithClock allows deterministic time in tests.
func NewQueueWithClock(now func() time.Time) *Queue {
	return &Queue{now: now}
}

// SetOnStart registers the game-creation hook fired by Start.
func (q *Queue) SetOnStart(fn func(context.Context) (int64, error)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onStart = fn
}

// Join adds a user to the queue. A new arrival cancels a running
// countdown, giving them a chance to be seen before the game starts.
func (q *Queue) Join(username string) (domain.QueueUser, error) {
	if username == "" {
		return domain.QueueUser{}, domain.ErrInvalidUsername
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, u := range q.users {
		if u.Username == username {
			return domain.QueueUser{}, domain.ErrDuplicateUsername
		}
	}
	user := domain.QueueUser{Username: username}
	q.users = append(q.users, user)
	q.starting = false
	return user, nil
}

// Leave removes a user and cancels any running countdown.
func (q *Queue) Leave(username string) (domain.QueueUser, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, u := range q.users {
		if u.Username == username {
			q.users = append(q.users[:i], q.users[i+1:]...)
			q.starting = false
			return u, nil
		}
	}
	return domain.QueueUser{}, domain.ErrQueueUserNotFound
}

// Start fires the start signal: the upcoming session is created through
// the hook and the game begins three seconds out. A second Start while
// the countdown runs is rejected.
func (q *Queue) Start(ctx context.Context) (domain.QueueState, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.starting {
		return domain.QueueState{}, domain.ErrStartInProgress
	}
	id, err := q.onStart(ctx)
	if err != nil {
		return domain.QueueState{}, err
	}
	q.starting = true
	q.startAt = q.now().UnixMilli() + startingMillis
	q.upcomingID = id
	return q.stateLocked(), nil
}

// State returns a snapshot of the queue.
func (q *Queue) State() domain.QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stateLocked()
}

func (q *Queue) stateLocked() domain.QueueState {
	users := make([]domain.QueueUser, len(q.users))
	copy(users, q.users)
	return domain.QueueState{
		Users:          users,
		GameStarting:   q.starting,
		MsToStart:      q.startAt - q.now().UnixMilli(),
		UpcomingGameID: q.upcomingID,
	}
}
