package app

import "trivia-service/internal/domain"

// Joker action keywords as sent by clients.
const (
	JokerDoublePoints    = "doublePoints"
	JokerRemoveIncorrect = "removeIncorrect"
	JokerTimeAttack      = "timeAttack"
)

// UseJoker applies a one-shot power-up for the named player and reports
// whether it was applied. A spent flag, unknown action or unknown player
// is a normal not-applied outcome, never an error.
func (s *Session) UseJoker(username, action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var player *domain.Player
	for _, p := range s.players {
		if p.Username == username {
			player = p
			break
		}
	}
	if player == nil {
		return false
	}

	switch action {
	case JokerDoublePoints:
		return s.useDoublePointsLocked(player)
	case JokerRemoveIncorrect:
		return s.useRemoveIncorrectLocked(player)
	case JokerTimeAttack:
		return s.useTimeAttackLocked(player)
	default:
		return false
	}
}

func (s *Session) useDoublePointsLocked(player *domain.Player) bool {
	if !player.DoublePointsJoker {
		return false
	}
	player.DoublePointsJoker = false
	player.DoublePointsActive = true
	return true
}

// useRemoveIncorrectLocked only consumes the flag; hiding a wrong answer
// choice is a presentation concern handled by clients.
func (s *Session) useRemoveIncorrectLocked(player *domain.Player) bool {
	if !player.RemoveIncorrectJoker {
		return false
	}
	player.RemoveIncorrectJoker = false
	return true
}

// useTimeAttackLocked speeds up every other player's personal timer. The
// rates stack when several players fire the joker in the same game.
func (s *Session) useTimeAttackLocked(player *domain.Player) bool {
	if !player.TimeAttackJoker {
		return false
	}
	for _, other := range s.players {
		if other.Username != player.Username {
			other.TimerRate++
		}
	}
	player.TimeAttackJoker = false
	s.timeAttacksUsed++
	return true
}
