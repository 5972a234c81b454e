package firmware

// Color is a traffic light state.
type Color int

//go:generate go tool stringer -linecomment -type=Color
const (
	GREEN  = Color(0) // green
	ORANGE = Color(1) // orange
	RED    = Color(2) // red
	OFF    = Color(3) // off

	COLOR_COUNT = 4
)

// Next returns the successor of a color. OFF is absorbing.
func (color Color) Next() Color {
	switch color {
	case RED:
		return GREEN
	case OFF:
		return OFF
	default:
		return color + 1
	}
}
