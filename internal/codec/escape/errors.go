package escape

import "errors"

var (
	errTrailingBackslash = errors.New("escape: trailing backslash with no following escape character")
	errUnknownEscape     = errors.New("escape: unknown escape sequence")
)
