package domain

import "math"

// Phase is the lifecycle stage of a multiplayer game session.
type Phase string

const (
	PhaseNotStarted  Phase = "NOT_STARTED"
	PhaseStarting    Phase = "STARTING"
	PhaseQuestion    Phase = "QUESTION"
	PhaseTransition  Phase = "TRANSITION"
	PhaseLeaderboard Phase = "LEADERBOARD"
	PhaseGameOver    Phase = "GAME_OVER"
)

// UnreachableTime is the nextPhaseAt value of a session that will never
// advance on its own (before the game starts and after GAME_OVER).
const UnreachableTime int64 = math.MaxInt64

// Player is one participant of a game session. The three joker flags are
// one-shot for the lifetime of the session; DoublePointsActive only lives
// until the next scoring pass. TimerRate starts at 1 and grows when other
// players use the time-attack joker against this player.
type Player struct {
	Username             string `json:"username"`
	Score                int    `json:"score"`
	TimeAttackJoker      bool   `json:"timeAttackJoker"`
	RemoveIncorrectJoker bool   `json:"removeIncorrectJoker"`
	DoublePointsJoker    bool   `json:"doublePointsJoker"`
	DoublePointsActive   bool   `json:"doublePointsActive"`
	TimerRate            int    `json:"timerRate"`
}

// NewPlayer returns a fresh player with all jokers still available.
func NewPlayer(username string) Player {
	return Player{
		Username:             username,
		TimeAttackJoker:      true,
		RemoveIncorrectJoker: true,
		DoublePointsJoker:    true,
		TimerRate:            1,
	}
}

// Submission is one raw answer event sent by a client. Submissions are
// immutable; a player may submit many per round and the engine reduces
// them to a single authoritative answer at scoring time.
type Submission struct {
	GameID       int64  `json:"gameId"`
	SubmittedAt  int64  `json:"submittedAt"` // client-reported, unix millis
	Round        int    `json:"round"`
	Username     string `json:"username"`
	Answer       string `json:"answer"`
	DoublePoints bool   `json:"doublePoints"`
}

// Reaction is one emoji reaction in a session's chat log. The log is
// append-only and never scored.
type Reaction struct {
	Username string `json:"username"`
	Emoji    string `json:"emoji"`
}

// GameState is a consistent snapshot of one session, safe to serialize
// without holding any lock.
type GameState struct {
	ID              int64      `json:"gameId"`
	Phase           Phase      `json:"phase"`
	Round           int        `json:"roundNumber"`
	NextPhaseAt     int64      `json:"nextPhaseAt"`
	Questions       []Question `json:"questions"`
	Players         []Player   `json:"players"`
	TimeAttacksUsed int        `json:"timeAttacksUsed"`
	Reactions       []Reaction `json:"reactions"`
}

// Activity is one entry of the energy-consumption catalog that questions
// are generated from.
type Activity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Consumption int64  `json:"consumption"` // watt-hours
	Source      string `json:"source"`
}

// QueueUser is one player waiting in the lobby queue.
type QueueUser struct {
	Username string `json:"username"`
}

// QueueState is a snapshot of the lobby queue.
type QueueState struct {
	Users          []QueueUser `json:"users"`
	GameStarting   bool        `json:"gameStarting"`
	MsToStart      int64       `json:"msToStart"`
	UpcomingGameID int64       `json:"upcomingGameId"`
}
