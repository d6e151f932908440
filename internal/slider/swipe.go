package slider

// Direction is the outcome of a horizontal touch gesture.
type Direction string

const (
	// SwipeNone means the gesture stayed within the threshold.
	SwipeNone Direction = ""
	// SwipeLeft moves to the next slide.
	SwipeLeft Direction = "left"
	// SwipeRight moves to the previous slide.
	SwipeRight Direction = "right"
)

// SwipeDirection classifies a touch from startX to endX.
// Displacement must exceed threshold; exactly threshold is a tap.
func SwipeDirection(startX, endX, threshold float64) Direction {
	switch {
	case startX-endX > threshold:
		return SwipeLeft
	case endX-startX > threshold:
		return SwipeRight
	default:
		return SwipeNone
	}
}
