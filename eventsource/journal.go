package eventsource

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/metacore-xyz/go-metacore/token"
)

// Journal event types. The journal records accepted operations (not the
// ledger's notifications): a TransferFrom also consumes allowance, which a
// Transfer notification alone cannot reconstruct.
const (
	OpDeployed     = "deployed"
	OpTransfer     = "transfer"
	OpApprove      = "approve"
	OpTransferFrom = "transferFrom"
	OpMint         = "mint"
)

// opRecord is the JSON payload of a journal event. Addresses are hex,
// values are decimal strings.
type opRecord struct {
	Caller   string `json:"caller,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Spender  string `json:"spender,omitempty"`
	Deployer string `json:"deployer,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Journal binds a token ledger to an event stream: every accepted operation
// is appended to the stream, and Open rebuilds the ledger by replaying the
// stream from the start.
//
// Operations are safe for concurrent use: a single lock is held across the
// ledger mutation and the store append, so the stream order always matches
// the order operations were applied.
type Journal struct {
	mu      sync.Mutex
	store   Store
	stream  string
	version int
	ledger  *token.Ledger
}

// Create constructs a fresh ledger for deployer and starts a new stream with
// the deployment event. Fails with ErrStreamExists on a non-empty stream.
func Create(ctx context.Context, store Store, stream string, deployer common.Address) (*Journal, error) {
	version, err := store.StreamVersion(ctx, stream)
	if err != nil {
		return nil, err
	}
	if version != -1 {
		return nil, fmt.Errorf("%w: %s", ErrStreamExists, stream)
	}

	j := &Journal{
		store:   store,
		stream:  stream,
		version: -1,
		ledger:  token.New(deployer),
	}
	if err := j.append(ctx, OpDeployed, opRecord{Deployer: deployer.Hex()}); err != nil {
		return nil, err
	}
	return j, nil
}

// Open rebuilds a ledger by replaying an existing stream.
func Open(ctx context.Context, store Store, stream string) (*Journal, error) {
	events, err := store.Read(ctx, stream, 0)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, stream)
	}

	first := events[0]
	if first.Type != OpDeployed {
		return nil, fmt.Errorf("eventsource: stream %s does not start with a deployment event", stream)
	}
	var dep opRecord
	if err := first.Decode(&dep); err != nil {
		return nil, fmt.Errorf("eventsource: decode deployment event: %w", err)
	}

	j := &Journal{
		store:   store,
		stream:  stream,
		version: first.Version,
		ledger:  token.New(common.HexToAddress(dep.Deployer)),
	}
	for _, e := range events[1:] {
		if err := j.replay(e); err != nil {
			return nil, fmt.Errorf("eventsource: replay %s at version %d: %w", e.Type, e.Version, err)
		}
		j.version = e.Version
	}
	return j, nil
}

// Ledger returns the journaled ledger. Callers must route mutations through
// the journal, not the ledger directly, or replay will diverge.
func (j *Journal) Ledger() *token.Ledger { return j.ledger }

// Version returns the stream version of the last persisted operation.
func (j *Journal) Version() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.version
}

// Transfer applies and persists a transfer.
func (j *Journal) Transfer(ctx context.Context, caller, to common.Address, value *uint256.Int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.ledger.Transfer(caller, to, value); err != nil {
		return err
	}
	return j.append(ctx, OpTransfer, opRecord{Caller: caller.Hex(), To: to.Hex(), Value: value.Dec()})
}

// Approve applies and persists an approval.
func (j *Journal) Approve(ctx context.Context, caller, spender common.Address, value *uint256.Int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.ledger.Approve(caller, spender, value); err != nil {
		return err
	}
	return j.append(ctx, OpApprove, opRecord{Caller: caller.Hex(), Spender: spender.Hex(), Value: value.Dec()})
}

// TransferFrom applies and persists a delegated transfer.
func (j *Journal) TransferFrom(ctx context.Context, caller, from, to common.Address, value *uint256.Int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.ledger.TransferFrom(caller, from, to, value); err != nil {
		return err
	}
	return j.append(ctx, OpTransferFrom, opRecord{
		Caller: caller.Hex(), From: from.Hex(), To: to.Hex(), Value: value.Dec(),
	})
}

// Mint applies and persists a mint.
func (j *Journal) Mint(ctx context.Context, caller, to common.Address, value *uint256.Int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ledger.Mint(caller, to, value); err != nil {
		return err
	}
	return j.append(ctx, OpMint, opRecord{Caller: caller.Hex(), To: to.Hex(), Value: value.Dec()})
}

// append requires j.mu held; Create calls it before the journal is shared.
func (j *Journal) append(ctx context.Context, op string, rec opRecord) error {
	event, err := NewEvent(j.stream, op, rec)
	if err != nil {
		return err
	}
	version, err := j.store.Append(ctx, j.stream, j.version, []*Event{event})
	if err != nil {
		return err
	}
	j.version = version
	return nil
}

func (j *Journal) replay(e *Event) error {
	var rec opRecord
	if err := e.Decode(&rec); err != nil {
		return err
	}
	value := new(uint256.Int)
	if rec.Value != "" {
		v, err := uint256.FromDecimal(rec.Value)
		if err != nil {
			return fmt.Errorf("parse value %q: %w", rec.Value, err)
		}
		value = v
	}

	switch e.Type {
	case OpTransfer:
		_, err := j.ledger.Transfer(common.HexToAddress(rec.Caller), common.HexToAddress(rec.To), value)
		return err
	case OpApprove:
		_, err := j.ledger.Approve(common.HexToAddress(rec.Caller), common.HexToAddress(rec.Spender), value)
		return err
	case OpTransferFrom:
		_, err := j.ledger.TransferFrom(
			common.HexToAddress(rec.Caller), common.HexToAddress(rec.From), common.HexToAddress(rec.To), value)
		return err
	case OpMint:
		return j.ledger.Mint(common.HexToAddress(rec.Caller), common.HexToAddress(rec.To), value)
	default:
		return fmt.Errorf("unknown operation %q", e.Type)
	}
}
