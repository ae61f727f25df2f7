// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Code classifies why a pool operation was rejected.
type Code string

const (
	InvalidAmount        Code = "InvalidAmount"
	BelowMinimum         Code = "BelowMinimum"
	TooMuchToWithdraw    Code = "TooMuchToWithdraw"
	ZeroSharesToWithdraw Code = "ZeroSharesToWithdraw"
	NotMatured           Code = "NotMatured"
	NotYetClaimable      Code = "NotYetClaimable"
	InvalidIndex         Code = "InvalidIndex"
	Unauthorized         Code = "Unauthorized"
	Paused               Code = "Paused"
)

// ErrRevert is a rejection of a pool operation. Nothing it touched is kept.
type ErrRevert struct {
	Code    Code
	message string
}

func New(code Code, message string) *ErrRevert {
	return &ErrRevert{
		Code:    code,
		message: message,
	}
}

func Newf(code Code, format string, args ...any) *ErrRevert {
	return New(code, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Is reports whether err is a revert with the given code.
func Is(err error, code Code) bool {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return false
	}
	return ve.Code == code
}

// CodeOf returns the code of a revert, or "" for other errors.
func CodeOf(err error) Code {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
