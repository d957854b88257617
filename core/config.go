package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config veloan config
type Config struct {
	App    App          `json:"app"`
	DB     db.Config    `json:"db"`
	Auth   AuthConfig   `json:"auth"`
	Chain  ChainConfig  `json:"chain"`
	Oracle OracleConfig `json:"oracle"`
	Vote   VoteConfig   `json:"vote"`
	Admins []string     `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	// Engine names the loan engine instance, eg. the locked asset symbol
	Engine string `json:"engine"`
	// Asset is the stablecoin lent out by the engine
	Asset string `json:"asset"`
	// EpochSeconds length of one epoch in seconds
	EpochSeconds int64  `json:"epoch_seconds"`
	Location     string `json:"location"`
}

// AuthConfig access token config. Secret signs the HMAC access tokens;
// Issuers, when set, restricts which token services are trusted.
type AuthConfig struct {
	Secret  string   `json:"secret"`
	Issuers []string `json:"issuers"`
	// Capacity of the token cache, no caching when zero
	Capacity int `json:"capacity"`
}

// ChainConfig chain gateway config
type ChainConfig struct {
	GateWay string `json:"gateway"`
	Escrow  string `json:"escrow"`
	Voter   string `json:"voter"`
	Vault   string `json:"vault"`
	Router  string `json:"router"`
	// Tokens asset id to token contract address
	Tokens map[string]string `json:"tokens"`
}

// OracleConfig price oracle config
type OracleConfig struct {
	EndPoint string `json:"end_point"`
	// CheckEnabled gates the staleness/depeg guard. Deployments that
	// forgo oracle risk run with it disabled and ConfirmPrice always
	// passes; this is a deployment choice, not a default.
	CheckEnabled bool `json:"check_enabled"`
	// StalenessSeconds max age of the latest round, 25h when zero
	StalenessSeconds int64 `json:"staleness_seconds"`
	// MinPrice accepted peg floor, 0.999 when zero
	MinPrice string `json:"min_price"`
}

// VoteConfig default voting config
type VoteConfig struct {
	Pools   []string `json:"pools"`
	Weights []string `json:"weights"`
	// WindowSeconds length of the voting window at the end of each epoch
	WindowSeconds int64 `json:"window_seconds"`
}
