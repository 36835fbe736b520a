package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/sirco-master/chess-online/internal/models"
)

// Game is one active match between two connections. Position, LastMove and
// Clocks are whatever the last mover reported; the server never recomputes them.
type Game struct {
	ID          uuid.UUID
	WhiteID     string
	BlackID     string
	Position    string
	LastMove    string
	History     []string
	Clocks      models.Clocks
	TimeControl models.TimeControl
	CreatedAt   time.Time

	actionIndex int
}

// ColorOf returns the side connID plays, or false if it is not a participant.
func (g *Game) ColorOf(connID string) (models.Color, bool) {
	switch connID {
	case "":
		return "", false
	case g.WhiteID:
		return models.White, true
	case g.BlackID:
		return models.Black, true
	}
	return "", false
}

// Opponent returns the connection id facing connID.
func (g *Game) Opponent(connID string) string {
	if connID == g.WhiteID {
		return g.BlackID
	}
	return g.WhiteID
}

// nextActionIndex numbers archived actions in the order they were applied.
func (g *Game) nextActionIndex() int {
	i := g.actionIndex
	g.actionIndex++
	return i
}

// GameStore holds all active games keyed by id.
// It is not safe for concurrent use; Server serializes access.
type GameStore struct {
	games map[uuid.UUID]*Game
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*Game),
	}
}

func (s *GameStore) AddGame(g *Game) {
	s.games[g.ID] = g
}

func (s *GameStore) GetGame(id uuid.UUID) (*Game, bool) {
	g, exists := s.games[id]
	return g, exists
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	delete(s.games, id)
}

// ByPlayer returns every game connID is playing in.
func (s *GameStore) ByPlayer(connID string) []*Game {
	var out []*Game
	for _, g := range s.games {
		if _, ok := g.ColorOf(connID); ok {
			out = append(out, g)
		}
	}
	return out
}

func (s *GameStore) Len() int {
	return len(s.games)
}

// lookupGame resolves a client-supplied id. Malformed ids are simply unknown.
func (s *GameStore) lookupGame(rawID string) (*Game, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, false
	}
	return s.GetGame(id)
}
