package launch

import "time"

// Clock supplies unix time in seconds.
type Clock interface {
	Now() int64
}

type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

var SystemClock Clock = systemClock{}
