package token

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

func amount(dec string) *uint256.Int {
	return uint256.MustFromDecimal(dec)
}

func TestNew_InitialState(t *testing.T) {
	l := New(deployer)

	if !l.BalanceOf(deployer).Eq(InitialSupply) {
		t.Errorf("deployer balance = %s, want %s", l.BalanceOf(deployer).Dec(), InitialSupply.Dec())
	}
	if !l.TotalSupply().Eq(InitialSupply) {
		t.Errorf("totalSupply = %s, want %s", l.TotalSupply().Dec(), InitialSupply.Dec())
	}
	if l.Owner() != deployer {
		t.Errorf("owner = %s, want %s", l.Owner(), deployer)
	}
	if l.Name() != "Metacore" || l.Symbol() != "MCORE" || l.Decimals() != 18 {
		t.Errorf("metadata = %s/%s/%d", l.Name(), l.Symbol(), l.Decimals())
	}
	if err := l.CheckInvariants(); err != nil {
		t.Errorf("invariants after construction: %v", err)
	}
}

func TestNew_ConstructionNotifications(t *testing.T) {
	l := New(deployer)
	events := l.Events()

	if len(events) != 2 {
		t.Fatalf("expected 2 construction records, got %d", len(events))
	}

	mint := events[0]
	if mint.Kind != KindTransfer {
		t.Errorf("first record kind = %s, want Transfer", mint.Kind)
	}
	if mint.From != (common.Address{}) {
		t.Errorf("initial credit should come from the zero address, got %s", mint.From)
	}
	if mint.To != deployer || !mint.Value.Eq(InitialSupply) {
		t.Errorf("initial credit = %s -> %s", mint.Value.Dec(), mint.To)
	}

	deployed := events[1]
	if deployed.Kind != KindContractDeployed {
		t.Errorf("second record kind = %s, want ContractDeployed", deployed.Kind)
	}
	if deployed.Deployer != deployer {
		t.Errorf("deployer = %s, want %s", deployed.Deployer, deployer)
	}
	if deployed.Contract != l.Contract() {
		t.Errorf("contract = %s, want %s", deployed.Contract, l.Contract())
	}
	if deployed.Timestamp.IsZero() {
		t.Error("deployment record has no timestamp")
	}
}

func TestTransfer(t *testing.T) {
	l := New(deployer)
	before := l.BalanceOf(deployer)

	ok, err := l.Transfer(deployer, alice, amount("100"))
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if !ok {
		t.Error("transfer returned false on success")
	}

	wantDeployer := new(uint256.Int).Sub(before, amount("100"))
	if !l.BalanceOf(deployer).Eq(wantDeployer) {
		t.Errorf("deployer balance = %s, want %s", l.BalanceOf(deployer).Dec(), wantDeployer.Dec())
	}
	if !l.BalanceOf(alice).Eq(amount("100")) {
		t.Errorf("alice balance = %s, want 100", l.BalanceOf(alice).Dec())
	}
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	l := New(deployer)

	ok, err := l.Transfer(alice, bob, amount("1"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if ok {
		t.Error("failed transfer returned true")
	}
	if !l.BalanceOf(alice).IsZero() || !l.BalanceOf(bob).IsZero() {
		t.Error("balances changed on failed transfer")
	}
	if !l.BalanceOf(deployer).Eq(InitialSupply) {
		t.Error("deployer balance changed on failed transfer")
	}
}

func TestTransfer_Self(t *testing.T) {
	l := New(deployer)
	l.Transfer(deployer, alice, amount("50"))

	events := len(l.Events())
	ok, err := l.Transfer(alice, alice, amount("30"))
	if err != nil || !ok {
		t.Fatalf("self transfer failed: %v", err)
	}
	if !l.BalanceOf(alice).Eq(amount("50")) {
		t.Errorf("self transfer changed balance: %s", l.BalanceOf(alice).Dec())
	}
	if len(l.Events()) != events+1 {
		t.Error("self transfer did not emit a notification")
	}

	// The debit check still applies.
	if _, err := l.Transfer(alice, alice, amount("51")); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("over-balance self transfer: got %v, want ErrInsufficientBalance", err)
	}
}

func TestTransfer_ZeroValueFromEmptyAccount(t *testing.T) {
	l := New(deployer)

	// Alice has no balance entry; 0 >= 0 holds, so a zero transfer succeeds.
	events := len(l.Events())
	ok, err := l.Transfer(alice, bob, amount("0"))
	if err != nil || !ok {
		t.Fatalf("zero transfer from empty account: ok=%v err=%v", ok, err)
	}
	if len(l.Events()) != events+1 {
		t.Error("zero transfer did not emit a notification")
	}

	// No entries may appear for either side.
	balances := l.Balances()
	if _, exists := balances[alice]; exists {
		t.Error("zero transfer created a balance entry for the sender")
	}
	if _, exists := balances[bob]; exists {
		t.Error("zero transfer created a balance entry for the recipient")
	}
	if err := l.CheckInvariants(); err != nil {
		t.Errorf("invariants after zero transfer: %v", err)
	}
}

func TestTransferFrom_ZeroValueNoEntries(t *testing.T) {
	l := New(deployer)

	// Neither a balance entry for alice nor an allowance entry for bob
	// exists; both zero preconditions hold.
	ok, err := l.TransferFrom(bob, alice, bob, amount("0"))
	if err != nil || !ok {
		t.Fatalf("zero transferFrom without entries: ok=%v err=%v", ok, err)
	}
	if err := l.CheckInvariants(); err != nil {
		t.Errorf("invariants after zero transferFrom: %v", err)
	}
}

func TestApprove_Overwrites(t *testing.T) {
	l := New(deployer)

	for _, v := range []string{"50", "10", "9000"} {
		ok, err := l.Approve(deployer, alice, amount(v))
		if err != nil || !ok {
			t.Fatalf("approve %s failed: %v", v, err)
		}
		if !l.Allowance(deployer, alice).Eq(amount(v)) {
			t.Errorf("allowance = %s, want %s", l.Allowance(deployer, alice).Dec(), v)
		}
	}

	// Setting back to zero removes the entry.
	l.Approve(deployer, alice, new(uint256.Int))
	if !l.Allowance(deployer, alice).IsZero() {
		t.Error("allowance not cleared by zero approve")
	}
	if err := l.CheckInvariants(); err != nil {
		t.Errorf("invariants after zero approve: %v", err)
	}
}

func TestTransferFrom(t *testing.T) {
	l := New(deployer)
	l.Approve(deployer, alice, amount("50"))

	ok, err := l.TransferFrom(alice, deployer, bob, amount("50"))
	if err != nil || !ok {
		t.Fatalf("transferFrom failed: %v", err)
	}
	if !l.BalanceOf(bob).Eq(amount("50")) {
		t.Errorf("bob balance = %s, want 50", l.BalanceOf(bob).Dec())
	}
	if !l.Allowance(deployer, alice).IsZero() {
		t.Errorf("allowance = %s, want 0", l.Allowance(deployer, alice).Dec())
	}

	// Allowance is spent; a second delegated transfer must fail.
	if _, err := l.TransferFrom(alice, deployer, bob, amount("1")); !errors.Is(err, ErrInsufficientAllowance) {
		t.Errorf("expected ErrInsufficientAllowance, got %v", err)
	}
	if !l.BalanceOf(bob).Eq(amount("50")) {
		t.Error("balance changed on failed transferFrom")
	}
}

func TestTransferFrom_ChecksBalanceBeforeAllowance(t *testing.T) {
	l := New(deployer)
	// Alice holds 10 but approves Bob for 100: a delegated transfer of 20
	// fails the balance check first.
	l.Transfer(deployer, alice, amount("10"))
	l.Approve(alice, bob, amount("100"))

	if _, err := l.TransferFrom(bob, alice, bob, amount("20")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if !l.Allowance(alice, bob).Eq(amount("100")) {
		t.Error("allowance changed on failed transferFrom")
	}
}

func TestTransferFrom_PartialAllowance(t *testing.T) {
	l := New(deployer)
	l.Approve(deployer, alice, amount("100"))

	l.TransferFrom(alice, deployer, bob, amount("30"))
	if !l.Allowance(deployer, alice).Eq(amount("70")) {
		t.Errorf("allowance = %s, want 70", l.Allowance(deployer, alice).Dec())
	}
}

func TestMint(t *testing.T) {
	l := New(deployer)

	if err := l.Mint(deployer, alice, amount("500")); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if !l.BalanceOf(alice).Eq(amount("500")) {
		t.Errorf("alice balance = %s, want 500", l.BalanceOf(alice).Dec())
	}
	want := new(uint256.Int).Add(InitialSupply, amount("500"))
	if !l.TotalSupply().Eq(want) {
		t.Errorf("totalSupply = %s, want %s", l.TotalSupply().Dec(), want.Dec())
	}

	events := l.Events()
	last := events[len(events)-1]
	if last.Kind != KindTransfer || last.From != (common.Address{}) || last.To != alice {
		t.Errorf("mint notification = %+v", last)
	}
}

func TestMint_Unauthorized(t *testing.T) {
	l := New(deployer)
	before := l.TotalSupply()

	if err := l.Mint(alice, alice, amount("1")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !l.TotalSupply().Eq(before) {
		t.Error("totalSupply changed on unauthorized mint")
	}
	if !l.BalanceOf(alice).IsZero() {
		t.Error("balance changed on unauthorized mint")
	}
}

func TestMint_SupplyOverflow(t *testing.T) {
	l := New(deployer)

	huge := new(uint256.Int).Not(new(uint256.Int)) // 2^256 - 1
	if err := l.Mint(deployer, alice, huge); !errors.Is(err, ErrSupplyOverflow) {
		t.Fatalf("expected ErrSupplyOverflow, got %v", err)
	}
	if !l.TotalSupply().Eq(InitialSupply) {
		t.Error("totalSupply changed on overflowing mint")
	}
	if err := l.CheckInvariants(); err != nil {
		t.Errorf("invariants after failed mint: %v", err)
	}
}

func TestContractInfo(t *testing.T) {
	l := New(deployer)

	info := l.ContractInfo()
	if info.Name != "Metacore" || info.Symbol != "MCORE" {
		t.Errorf("info metadata = %s/%s", info.Name, info.Symbol)
	}
	if !info.TotalSupply.Eq(InitialSupply) {
		t.Errorf("info.TotalSupply = %s", info.TotalSupply.Dec())
	}
	if info.Owner != deployer {
		t.Errorf("info.Owner = %s", info.Owner)
	}

	// Reads are idempotent: repeated calls observe identical state and the
	// journal does not grow.
	events := len(l.Events())
	for i := 0; i < 10; i++ {
		l.ContractInfo()
		l.BalanceOf(deployer)
		l.Allowance(deployer, alice)
	}
	if len(l.Events()) != events {
		t.Error("reads appended notifications")
	}
	if !l.TotalSupply().Eq(InitialSupply) {
		t.Error("reads mutated state")
	}
}

func TestConservation_OverSequence(t *testing.T) {
	l := New(deployer)
	l.Approve(deployer, alice, amount("100000"))

	steps := []func() error{
		func() error { _, err := l.Transfer(deployer, alice, amount("1000")); return err },
		func() error { _, err := l.Transfer(alice, bob, amount("400")); return err },
		func() error { _, err := l.TransferFrom(alice, deployer, bob, amount("90")); return err },
		func() error { return l.Mint(deployer, bob, amount("7")) },
		func() error { _, err := l.Transfer(bob, alice, amount("497")); return err },
		func() error { _, err := l.Transfer(bob, bob, amount("0")); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if err := l.CheckInvariants(); err != nil {
			t.Fatalf("after step %d: %v", i, err)
		}
	}

	sum := new(uint256.Int)
	for _, bal := range l.Balances() {
		sum.Add(sum, bal)
	}
	if !sum.Eq(l.TotalSupply()) {
		t.Errorf("sum of balances %s != totalSupply %s", sum.Dec(), l.TotalSupply().Dec())
	}
}

func TestZeroBalanceIndistinguishable(t *testing.T) {
	l := New(deployer)
	l.Transfer(deployer, alice, amount("10"))
	l.Transfer(alice, bob, amount("10"))

	// Alice's entry is fully drained; the snapshot must not contain it.
	if _, ok := l.Balances()[alice]; ok {
		t.Error("drained account still has a balance entry")
	}
	if !l.BalanceOf(alice).IsZero() {
		t.Error("drained account has non-zero balance")
	}
}

func TestObserver(t *testing.T) {
	l := New(deployer)

	var seen []Record
	l.SetObserver(func(r Record) { seen = append(seen, r) })

	l.Transfer(deployer, alice, amount("5"))
	l.Approve(deployer, alice, amount("9"))

	if len(seen) != 2 {
		t.Fatalf("observer saw %d records, want 2", len(seen))
	}
	if seen[0].Kind != KindTransfer || seen[1].Kind != KindApproval {
		t.Errorf("observer kinds = %s, %s", seen[0].Kind, seen[1].Kind)
	}
	if seen[0].Sequence+1 != seen[1].Sequence {
		t.Errorf("sequence numbers not consecutive: %d, %d", seen[0].Sequence, seen[1].Sequence)
	}
}

func TestRecord_Matches(t *testing.T) {
	l := New(deployer)
	l.Transfer(deployer, alice, amount("5"))

	events := l.Events()
	transfer := events[len(events)-1]

	if !transfer.Matches(deployer) || !transfer.Matches(alice) {
		t.Error("transfer record should match both parties")
	}
	if transfer.Matches(bob) {
		t.Error("transfer record should not match a third party")
	}
}
