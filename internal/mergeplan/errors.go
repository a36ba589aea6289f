package mergeplan

import "errors"

var (
	// ErrEmptyLayout means the layout names no tracks at all.
	ErrEmptyLayout = errors.New("layout has no tracks")
	// ErrMissingSource means a layout entry names a source with no
	// known file path.
	ErrMissingSource = errors.New("source not found")
	// ErrExternalTrackPath means an external track entry carries no
	// file path to read the track from.
	ErrExternalTrackPath = errors.New("external track missing path")
)
