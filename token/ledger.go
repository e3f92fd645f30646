// Package token implements the Metacore fungible-token ledger: a balance
// table, an allowance table, immutable metadata, and a single minting owner
// fixed at construction.
//
// Every state-changing operation executes atomically under one ledger-wide
// lock and either completes fully or returns an error with no partial state
// change. Each successful mutation appends a Record to the ledger's
// notification journal.
package token

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Ledger metadata, fixed for every instance.
const (
	Name     = "Metacore"
	Symbol   = "MCORE"
	Decimals = 18
)

// InitialSupply is the full supply credited to the deployer at construction:
// 1,000,000 whole tokens at 18 decimals.
var InitialSupply = uint256.MustFromDecimal("1000000000000000000000000")

// Ledger is the authoritative record of balances and allowances.
//
// A balance of zero is indistinguishable from "no entry": entries are created
// implicitly on first credit and deleted when they reach zero. The same holds
// for allowances.
type Ledger struct {
	mu sync.Mutex

	contract    common.Address
	owner       common.Address
	totalSupply *uint256.Int

	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int

	journal  []Record
	sequence uint64
	observer Observer
}

// Info is the aggregate metadata view returned by ContractInfo.
type Info struct {
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    uint8          `json:"decimals"`
	TotalSupply *uint256.Int   `json:"totalSupply"`
	Owner       common.Address `json:"owner"`
	Contract    common.Address `json:"contract"`
}

// New constructs a ledger: the deployer becomes the owner, receives the full
// initial supply, and two notifications are sealed — a Transfer from the zero
// address for the initial supply, then a ContractDeployed carrying the
// ledger's derived address, the deployer, and the construction timestamp.
func New(deployer common.Address) *Ledger {
	l := &Ledger{
		contract:    crypto.CreateAddress(deployer, 0),
		owner:       deployer,
		totalSupply: InitialSupply.Clone(),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
	}
	l.balances[deployer] = InitialSupply.Clone()
	l.emit(Record{Kind: KindTransfer, From: common.Address{}, To: deployer, Value: InitialSupply.Clone()})
	l.emit(Record{Kind: KindContractDeployed, Contract: l.contract, Deployer: deployer})
	return l
}

// Transfer moves value from the caller's balance to "to". A self-transfer
// still performs the debit check, both mutations, and the notification.
func (l *Ledger) Transfer(caller, to common.Address, value *uint256.Int) (bool, error) {
	value = norm(value)
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.debit(caller, value); err != nil {
		return false, err
	}
	l.credit(to, value)
	l.emit(Record{Kind: KindTransfer, From: caller, To: to, Value: value.Clone()})
	return true, nil
}

// Approve sets the caller's allowance for the spender to value, overwriting
// any prior allowance unconditionally. There is no reset-to-zero requirement;
// the approve front-running hazard is part of the observed surface.
func (l *Ledger) Approve(caller, spender common.Address, value *uint256.Int) (bool, error) {
	value = norm(value)
	l.mu.Lock()
	defer l.mu.Unlock()

	l.setAllowance(caller, spender, value)
	l.emit(Record{Kind: KindApproval, Owner: caller, Spender: spender, Value: value.Clone()})
	return true, nil
}

// TransferFrom moves value from "from" to "to" on the caller's pre-approved
// allowance. Preconditions are checked in order — balance, then allowance —
// and both must pass before any mutation.
func (l *Ledger) TransferFrom(caller, from, to common.Address, value *uint256.Int) (bool, error) {
	value = norm(value)
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[from]
	if bal == nil {
		bal = new(uint256.Int)
	}
	if bal.Lt(value) {
		return false, ErrInsufficientBalance
	}
	allowed := l.allowance(from, caller)
	if allowed.Lt(value) {
		return false, ErrInsufficientAllowance
	}

	l.mustDebit(from, value)
	l.credit(to, value)
	l.setAllowance(from, caller, new(uint256.Int).Sub(allowed, value))
	l.emit(Record{Kind: KindTransfer, From: from, To: to, Value: value.Clone()})
	return true, nil
}

// Mint issues new supply to "to". Only the owner may mint; there is no upper
// bound on value beyond the uint256 ceiling on totalSupply.
func (l *Ledger) Mint(caller, to common.Address, value *uint256.Int) error {
	value = norm(value)
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrUnauthorized
	}
	supply, overflow := new(uint256.Int).AddOverflow(l.totalSupply, value)
	if overflow {
		return ErrSupplyOverflow
	}
	l.totalSupply = supply
	l.credit(to, value)
	l.emit(Record{Kind: KindTransfer, From: common.Address{}, To: to, Value: value.Clone()})
	return nil
}

// ContractInfo returns the ledger metadata. Pure read.
func (l *Ledger) ContractInfo() Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Info{
		Name:        Name,
		Symbol:      Symbol,
		Decimals:    Decimals,
		TotalSupply: l.totalSupply.Clone(),
		Owner:       l.owner,
		Contract:    l.contract,
	}
}

// Name returns the display name.
func (l *Ledger) Name() string { return Name }

// Symbol returns the ticker symbol.
func (l *Ledger) Symbol() string { return Symbol }

// Decimals returns the fixed decimal precision.
func (l *Ledger) Decimals() uint8 { return Decimals }

// Owner returns the minting owner, fixed at construction.
func (l *Ledger) Owner() common.Address { return l.owner }

// Contract returns the ledger's own address, derived from the deployer.
func (l *Ledger) Contract() common.Address { return l.contract }

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSupply.Clone()
}

// BalanceOf returns the balance of addr, zero for unknown accounts.
func (l *Ledger) BalanceOf(addr common.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[addr]; bal != nil {
		return bal.Clone()
	}
	return new(uint256.Int)
}

// Allowance returns what spender may still move out of owner's balance.
func (l *Ledger) Allowance(owner, spender common.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowance(owner, spender).Clone()
}

// Balances returns a snapshot of every non-zero balance.
func (l *Ledger) Balances() map[common.Address]*uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[common.Address]*uint256.Int, len(l.balances))
	for addr, bal := range l.balances {
		out[addr] = bal.Clone()
	}
	return out
}

// debit removes value from the balance of "from", deleting the entry when it
// reaches zero. Returns ErrInsufficientBalance without mutating on shortfall.
func (l *Ledger) debit(from common.Address, value *uint256.Int) error {
	bal := l.balances[from]
	if bal == nil {
		// Absent entry is a zero balance; a zero-value debit from it holds.
		bal = new(uint256.Int)
	}
	if bal.Lt(value) {
		return ErrInsufficientBalance
	}
	rem := new(uint256.Int).Sub(bal, value)
	if rem.IsZero() {
		delete(l.balances, from)
	} else {
		l.balances[from] = rem
	}
	return nil
}

// mustDebit is debit after the caller has already verified the precondition.
func (l *Ledger) mustDebit(from common.Address, value *uint256.Int) {
	if err := l.debit(from, value); err != nil {
		panic("token: debit after verified precondition: " + err.Error())
	}
}

func (l *Ledger) credit(to common.Address, value *uint256.Int) {
	if value.IsZero() {
		return
	}
	bal := l.balances[to]
	if bal == nil {
		bal = new(uint256.Int)
	}
	sum, overflow := new(uint256.Int).AddOverflow(bal, value)
	if overflow {
		// Unreachable: no balance can exceed totalSupply, and totalSupply
		// growth is overflow-checked in Mint.
		panic("token: balance overflow")
	}
	l.balances[to] = sum
}

func (l *Ledger) allowance(owner, spender common.Address) *uint256.Int {
	if m := l.allowances[owner]; m != nil {
		if v := m[spender]; v != nil {
			return v
		}
	}
	return new(uint256.Int)
}

func (l *Ledger) setAllowance(owner, spender common.Address, value *uint256.Int) {
	m := l.allowances[owner]
	if value.IsZero() {
		if m != nil {
			delete(m, spender)
			if len(m) == 0 {
				delete(l.allowances, owner)
			}
		}
		return
	}
	if m == nil {
		m = make(map[common.Address]*uint256.Int)
		l.allowances[owner] = m
	}
	m[spender] = value.Clone()
}

func norm(value *uint256.Int) *uint256.Int {
	if value == nil {
		return new(uint256.Int)
	}
	return value
}
