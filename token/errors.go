package token

import "errors"

var (
	// Operation errors. Every failed operation aborts with no state change.
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrUnauthorized          = errors.New("token: unauthorized")

	// ErrSupplyOverflow is returned when a mint would push totalSupply past
	// the uint256 ceiling. Balance arithmetic can never overflow because no
	// balance can exceed totalSupply, so supply growth is the only checked
	// path that can fail.
	ErrSupplyOverflow = errors.New("token: total supply overflow")

	// Invariant errors
	ErrInvariantViolated = errors.New("token: invariant violated")
)
