package query

import "errors"

// ErrEngineBug marks conditions that indicate a defect in the engine itself,
// such as a printer meeting a tag the codec never produces. Callers surface
// these instead of treating them as query-time errors.
var ErrEngineBug = errors.New("engine bug")
