package token

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Kind identifies a notification type in the ledger journal.
type Kind string

const (
	KindTransfer         Kind = "Transfer"
	KindApproval         Kind = "Approval"
	KindContractDeployed Kind = "ContractDeployed"
)

// Record is a single entry in the ledger's append-only notification journal.
// Records are sealed when appended and never mutated afterwards. The address
// fields mirror the indexed fields of the corresponding on-chain events, so
// off-chain observers can filter on them.
type Record struct {
	Sequence  uint64
	Kind      Kind
	Timestamp time.Time

	// Transfer fields. From is the zero address for mints and for the
	// construction credit.
	From  common.Address
	To    common.Address
	Value *uint256.Int

	// Approval fields.
	Owner   common.Address
	Spender common.Address

	// ContractDeployed fields, set exactly once at construction.
	Contract common.Address
	Deployer common.Address
}

// Matches reports whether addr appears in any of the record's indexed
// address fields.
func (r Record) Matches(addr common.Address) bool {
	switch r.Kind {
	case KindTransfer:
		return r.From == addr || r.To == addr
	case KindApproval:
		return r.Owner == addr || r.Spender == addr
	case KindContractDeployed:
		return r.Contract == addr || r.Deployer == addr
	}
	return false
}

// Observer receives each record as it is sealed. Observers run while the
// ledger lock is held and must not call back into the ledger.
type Observer func(Record)

func (l *Ledger) emit(r Record) {
	r.Sequence = l.sequence
	l.sequence++
	r.Timestamp = time.Now().UTC()
	l.journal = append(l.journal, r)
	if l.observer != nil {
		l.observer(r)
	}
}

// Events returns a copy of the notification journal in append order.
func (l *Ledger) Events() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.journal))
	copy(out, l.journal)
	return out
}

// SetObserver installs a callback invoked for every record appended after
// this call. The two construction records are already sealed by the time an
// observer can be installed; replay them from Events if needed.
func (l *Ledger) SetObserver(obs Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = obs
}
