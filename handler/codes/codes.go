package codes

import (
	"strconv"

	"veloan/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"
)

// With with specified error
func With(err error, code core.ErrorCode) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(int(code)))
}

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument:
		return int(core.ErrInvalidArgument)
	case twirp.NotFound:
		return int(core.ErrLoanNotFound)
	case twirp.PermissionDenied:
		return int(core.ErrNotAuthorized)
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}
