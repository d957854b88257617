package session

import (
	"context"
	"errors"

	"veloan/core"

	"github.com/asaskevich/govalidator"
	"github.com/bluele/gcache"
	"github.com/golang-jwt/jwt"
	"golang.org/x/sync/singleflight"
)

// New new session. Tokens are HMAC signed JWTs whose subject is the
// caller address; issuers restricts who may mint them when non-empty.
func New(secret string, capacity int, issuers []string) core.Session {
	var s core.Session = &session{
		secret:  []byte(secret),
		issuers: issuers,
		sf:      &singleflight.Group{},
	}

	if capacity > 0 {
		s = &cacheSession{
			Session: s,
			tokens:  gcache.New(capacity).LRU().Build(),
		}
	}

	return s
}

type session struct {
	secret  []byte
	issuers []string
	sf      *singleflight.Group
}

func (s *session) Login(ctx context.Context, accessToken string) (string, error) {
	caller, err, _ := s.sf.Do(accessToken, func() (interface{}, error) {
		var claim jwt.StandardClaims
		token, err := jwt.ParseWithClaims(accessToken, &claim, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}

			return s.secret, nil
		})
		if err != nil {
			return nil, err
		}

		if !token.Valid {
			return nil, errors.New("invalid token")
		}

		if len(s.issuers) > 0 && !govalidator.IsIn(claim.Issuer, s.issuers...) {
			return nil, errors.New("invalid issuer")
		}

		if claim.Subject == "" {
			return nil, errors.New("no subject")
		}

		return claim.Subject, nil
	})

	if err != nil {
		return "", err
	}

	return caller.(string), nil
}

type cacheSession struct {
	core.Session
	tokens gcache.Cache
}

func (s *cacheSession) Login(ctx context.Context, accessToken string) (string, error) {
	if v, err := s.tokens.Get(accessToken); err == nil {
		if caller, ok := v.(string); ok {
			return caller, nil
		}
	}

	caller, err := s.Session.Login(ctx, accessToken)
	if err != nil {
		return "", err
	}

	_ = s.tokens.Set(accessToken, caller)
	return caller, nil
}
