package analysis

import "errors"

var (
	// ErrEmptySeries is returned when the input run holds no samples.
	ErrEmptySeries = errors.New("analysis: empty sample series")

	// ErrInvalidGeometry is returned when width, thickness or grip
	// separation is not positive.
	ErrInvalidGeometry = errors.New("analysis: specimen geometry must be positive")

	// ErrInvalidTable is returned when the compliance table has fewer than
	// two points or is not in ascending force order.
	ErrInvalidTable = errors.New("analysis: invalid compliance table")

	// ErrInsufficientData is returned by collection statistics when fewer
	// than two values are available.
	ErrInsufficientData = errors.New("analysis: need at least 2 specimens for statistics")
)
