package lending

import (
	"fmt"
)

// Flag how a failed requirement should be settled
type Flag int

const (
	// FlagNoisy abort the operation
	FlagNoisy Flag = iota
	// FlagRefund reject the operation and refund the attached funds
	FlagRefund
)

type requireError struct {
	msg  string
	flag Flag
}

func (e *requireError) Error() string {
	return fmt.Sprintf("requirement not satisfied: %s", e.msg)
}

// Require nil when condition holds, otherwise a tagged error
func Require(condition bool, msg string, flags ...Flag) error {
	if condition {
		return nil
	}

	flag := FlagNoisy
	if len(flags) > 0 {
		flag = flags[0]
	}

	return &requireError{msg: msg, flag: flag}
}

// ShouldRefund whether err asks for a refund settlement
func ShouldRefund(err error) bool {
	e, ok := err.(*requireError)
	return ok && e.flag == FlagRefund
}
