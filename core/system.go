package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// System system info
type System struct {
	Engine      string
	Asset       string
	EpochLength time.Duration
	VoteWindow  time.Duration
	Admins      []string
	Version     string

	DefaultPools          []*Pool
	DefaultPoolChangeTime time.Time
}

// Pool a voting target with its weight
type Pool struct {
	Address string          `json:"address"`
	Weight  decimal.Decimal `json:"weight"`
}

// IsAdmin check admin
func (s *System) IsAdmin(userID string) bool {
	for _, a := range s.Admins {
		if a == userID {
			return true
		}
	}

	return false
}
