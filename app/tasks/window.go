package tasks

import (
	"time"
)

// ActiveWindow limits polling to the hours strictly between Start and End.
// Start > End wraps around midnight; Start == End means always active.
type ActiveWindow struct {
	Start int
	End   int
}

func (w ActiveWindow) Enabled() bool {
	return w.Start != w.End
}

func (w ActiveWindow) Contains(t time.Time) bool {
	if !w.Enabled() {
		return true
	}

	hour := t.Hour()
	if w.Start < w.End {
		return w.Start < hour && hour < w.End
	}
	return hour > w.Start || hour < w.End
}
