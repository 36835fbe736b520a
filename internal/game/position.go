// internal/game/position.go
package game

import (
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/sirco-master/chess-online/internal/models"
)

// StartingPosition is the standard initial board in FEN.
const StartingPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// SideToMove decodes a client-reported FEN and returns the color on move.
// Only the turn bit is trusted; the rest of the position is relayed as-is.
func SideToMove(fen string) (models.Color, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return "", fmt.Errorf("%w: empty position", ErrInvalidPosition)
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	if chess.NewGame(opt).Position().Turn() == chess.White {
		return models.White, nil
	}
	return models.Black, nil
}
