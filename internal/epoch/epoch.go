package epoch

import (
	"time"
)

// Length default epoch length
const Length = 7 * 24 * time.Hour

// Index epoch index of t
func Index(t time.Time, length time.Duration) int64 {
	if length <= 0 {
		length = Length
	}

	return t.Unix() / int64(length/time.Second)
}

// Current epoch index of now
func Current(length time.Duration) int64 {
	return Index(time.Now(), length)
}

// Start beginning of the epoch containing t
func Start(t time.Time, length time.Duration) time.Time {
	if length <= 0 {
		length = Length
	}

	secs := int64(length / time.Second)
	return time.Unix(t.Unix()-t.Unix()%secs, 0).UTC()
}

// Next beginning of the epoch after t
func Next(t time.Time, length time.Duration) time.Time {
	return Start(t, length).Add(length)
}

// InVotingWindow whether t falls inside the voting window at the tail of
// its epoch; default votes are only cast inside the window.
func InVotingWindow(t time.Time, length, window time.Duration) bool {
	if window <= 0 || window >= length {
		return true
	}

	return t.Before(Next(t, length)) && !t.Before(Next(t, length).Add(-window))
}

// SameEpoch whether a and b share an accrual bucket
func SameEpoch(a, b time.Time, length time.Duration) bool {
	return Index(a, length) == Index(b, length)
}
