package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Violation describes a failed invariant check.
type Violation struct {
	Name   string
	Detail string
}

// Violations checks the ledger's structural invariants against the current
// state and returns one entry per failed check (empty if all hold):
//
//   - conservation: the sum of all balances equals totalSupply
//   - non_zero_entries: no balance or allowance entry holds zero (a zero is
//     indistinguishable from "no entry" and must be deleted, not stored)
func (l *Ledger) Violations() []Violation {
	l.mu.Lock()
	defer l.mu.Unlock()

	var violations []Violation

	sum := new(uint256.Int)
	for addr, bal := range l.balances {
		if bal.IsZero() {
			violations = append(violations, Violation{
				Name:   "non_zero_entries",
				Detail: fmt.Sprintf("zero balance entry for %s", addr),
			})
		}
		next, overflow := new(uint256.Int).AddOverflow(sum, bal)
		if overflow {
			violations = append(violations, Violation{
				Name:   "conservation",
				Detail: "balance sum overflows uint256",
			})
			return violations
		}
		sum = next
	}
	if !sum.Eq(l.totalSupply) {
		violations = append(violations, Violation{
			Name:   "conservation",
			Detail: fmt.Sprintf("sum of balances %s != totalSupply %s", sum.Dec(), l.totalSupply.Dec()),
		})
	}

	for owner, m := range l.allowances {
		if len(m) == 0 {
			violations = append(violations, Violation{
				Name:   "non_zero_entries",
				Detail: fmt.Sprintf("empty allowance map for %s", owner),
			})
		}
		for spender, v := range m {
			if v.IsZero() {
				violations = append(violations, Violation{
					Name:   "non_zero_entries",
					Detail: fmt.Sprintf("zero allowance entry for %s -> %s", owner, spender),
				})
			}
		}
	}

	return violations
}

// CheckInvariants returns nil if all invariants hold, or an error wrapping
// ErrInvariantViolated describing the first violation.
func (l *Ledger) CheckInvariants() error {
	if v := l.Violations(); len(v) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrInvariantViolated, v[0].Name, v[0].Detail)
	}
	return nil
}
