package models

// PlayerInfo is the public identity of a player as shown to an opponent or lobby roster.
type PlayerInfo struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Ready       bool   `json:"ready,omitempty"`
}

// Color is the side a player controls in a game.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}
