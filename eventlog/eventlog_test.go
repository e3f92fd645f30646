package eventlog

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/metacore-xyz/go-metacore/token"
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

func buildLog(t *testing.T) *Log {
	t.Helper()
	l := token.New(deployer)
	if _, err := l.Transfer(deployer, alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := l.Approve(deployer, bob, uint256.NewInt(50)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := l.TransferFrom(bob, deployer, bob, uint256.NewInt(30)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	return FromLedger(l.Events())
}

func TestFromLedger(t *testing.T) {
	log := buildLog(t)

	// genesis transfer, deployed, transfer, approval, delegated transfer
	if len(log.Records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(log.Records))
	}

	genesis := log.Records[0]
	if genesis.Kind != "Transfer" {
		t.Errorf("first record kind = %s", genesis.Kind)
	}
	if genesis.From != (common.Address{}).Hex() {
		t.Errorf("genesis from = %s, want zero address", genesis.From)
	}
	if genesis.Value != token.InitialSupply.Dec() {
		t.Errorf("genesis value = %s", genesis.Value)
	}

	deployed := log.Records[1]
	if deployed.Kind != "ContractDeployed" || deployed.Deployer != deployer.Hex() {
		t.Errorf("deployment record = %+v", deployed)
	}

	approval := log.Records[3]
	if approval.Kind != "Approval" || approval.Owner != deployer.Hex() || approval.Spender != bob.Hex() {
		t.Errorf("approval record = %+v", approval)
	}
}

func TestFilters(t *testing.T) {
	log := buildLog(t)

	transfers := log.FilterKind("Transfer")
	if len(transfers.Records) != 3 {
		t.Errorf("expected 3 transfers, got %d", len(transfers.Records))
	}

	byAlice := log.FilterAddress(alice.Hex())
	if len(byAlice.Records) != 1 {
		t.Fatalf("expected 1 record for alice, got %d", len(byAlice.Records))
	}
	if byAlice.Records[0].To != alice.Hex() {
		t.Errorf("alice record = %+v", byAlice.Records[0])
	}

	// Filtering is case-insensitive on the hex form.
	lower := log.FilterAddress("0x00000000000000000000000000000000000000b1")
	if len(lower.Records) != 2 {
		t.Errorf("expected 2 records for bob, got %d", len(lower.Records))
	}
}

func TestSummarize(t *testing.T) {
	log := buildLog(t)
	summary := log.Summarize()

	if summary.NumRecords != 5 {
		t.Errorf("NumRecords = %d", summary.NumRecords)
	}
	if summary.PerKind["Transfer"] != 3 || summary.PerKind["Approval"] != 1 || summary.PerKind["ContractDeployed"] != 1 {
		t.Errorf("PerKind = %v", summary.PerKind)
	}
	// deployer, alice, bob, zero address
	if summary.NumAddresses != 4 {
		t.Errorf("NumAddresses = %d", summary.NumAddresses)
	}
	want := new(uint256.Int).Add(token.InitialSupply, uint256.NewInt(130))
	if summary.TotalTransferred != want.Dec() {
		t.Errorf("TotalTransferred = %s, want %s", summary.TotalTransferred, want.Dec())
	}
	if summary.StartTime.After(summary.EndTime) {
		t.Error("StartTime after EndTime")
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	log := buildLog(t)

	var buf bytes.Buffer
	if err := log.WriteJSONL(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	parsed, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(parsed.Records) != len(log.Records) {
		t.Fatalf("expected %d records, got %d", len(log.Records), len(parsed.Records))
	}
	if parsed.Records[2].To != alice.Hex() || parsed.Records[2].Value != "100" {
		t.Errorf("record 2 = %+v", parsed.Records[2])
	}
}

func TestCSVRoundTrip(t *testing.T) {
	log := buildLog(t)

	var buf bytes.Buffer
	if err := log.WriteCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	parsed, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(parsed.Records) != len(log.Records) {
		t.Fatalf("expected %d records, got %d", len(log.Records), len(parsed.Records))
	}
	if parsed.Records[4].Kind != "Transfer" || parsed.Records[4].Value != "30" {
		t.Errorf("record 4 = %+v", parsed.Records[4])
	}

	// Filtering and summarizing the parsed log behaves like the original.
	if got := parsed.FilterKind("Approval"); len(got.Records) != 1 {
		t.Errorf("parsed approval count = %d", len(got.Records))
	}
}

func TestReadJSONL_BadInput(t *testing.T) {
	if _, err := ReadJSONL(bytes.NewBufferString("{not json}\n")); err == nil {
		t.Error("expected error for invalid JSON line")
	}
}
