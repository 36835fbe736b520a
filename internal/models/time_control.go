// internal/models/time_control.go
package models

// TimeControl is the clock class requested for a game.
type TimeControl string

const (
	Rapid   TimeControl = "rapid"
	Blitz   TimeControl = "blitz"
	Bullet  TimeControl = "bullet"
	Untimed TimeControl = "untimed"
)

// PublicTimeControl is the only class offered to public matchmaking.
const PublicTimeControl = Blitz

// startingSeconds maps each timed class to its starting clock per side.
var startingSeconds = map[TimeControl]float64{
	Rapid:  600,
	Blitz:  180,
	Bullet: 60,
}

// StartingClock returns the seconds each side starts with. Unknown classes,
// including Untimed, have no clock and return 0.
func (tc TimeControl) StartingClock() float64 {
	return startingSeconds[tc]
}

// Clocks holds the remaining seconds for both sides as reported by the clients.
type Clocks struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// NewClocks builds the starting clocks for a time control.
func NewClocks(tc TimeControl) Clocks {
	s := tc.StartingClock()
	return Clocks{White: s, Black: s}
}
