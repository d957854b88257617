package core

import (
	"context"
)

// Session caller session
type Session interface {
	// Login resolves an access token to the caller address
	Login(ctx context.Context, accessToken string) (string, error)
}
