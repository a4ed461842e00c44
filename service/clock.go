package service

import "time"

// Clock supplies the current time for premium checks and session ages
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock returns the wall clock in UTC
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
