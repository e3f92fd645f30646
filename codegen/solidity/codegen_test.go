package solidity

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func TestGenerate_Structure(t *testing.T) {
	src := Generate(DefaultContract())

	for _, want := range []string{
		"pragma solidity ^0.8.19;",
		"contract MetacoreToken {",
		`string public name = "Metacore";`,
		`string public symbol = "MCORE";`,
		"uint8 public decimals = 18;",
		"totalSupply = 1000000 * 10 ** uint256(decimals);",
		"error InsufficientBalance();",
		"error InsufficientAllowance();",
		"error Unauthorized();",
		"event Transfer(address indexed from, address indexed to, uint256 value);",
		"event ContractDeployed(address indexed contractAddress, address indexed deployer, uint256 timestamp);",
		"function transfer(address to, uint256 value) external returns (bool)",
		"function approve(address spender, uint256 value) external returns (bool)",
		"function transferFrom(address from, address to, uint256 value) external returns (bool)",
		"function mint(address to, uint256 value) external {",
		"function getContractInfo() external view returns (string memory, string memory, uint256, address)",
		"emit ContractDeployed(address(this), msg.sender, block.timestamp);",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}

	// The observed surface has no ownership transfer and no burn.
	for _, reject := range []string{"transferOwnership", "renounceOwnership", "burn", "pause"} {
		if strings.Contains(src, reject) {
			t.Errorf("generated source must not contain %q", reject)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	c := DefaultContract()
	first := Generate(c)
	for i := 0; i < 5; i++ {
		if Generate(c) != first {
			t.Fatal("generated source is not deterministic")
		}
	}
}

func TestGenerate_ApproveHasNoResetGuard(t *testing.T) {
	// approve overwrites unconditionally; a reset-to-zero guard would change
	// the externally observed surface.
	src := Generate(DefaultContract())
	fnStart := strings.Index(src, "function approve")
	fnEnd := strings.Index(src[fnStart:], "}")
	body := src[fnStart : fnStart+fnEnd]
	if strings.Contains(body, "revert") || strings.Contains(body, "require") {
		t.Errorf("approve must not guard the existing allowance:\n%s", body)
	}
}

func TestContractName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Metacore", "MetacoreToken"},
		{"my coin", "MycoinToken"},
		{"x-42", "X42Token"},
		{"", "UnnamedToken"},
	}
	for _, tt := range tests {
		if got := ContractName(tt.name); got != tt.want {
			t.Errorf("ContractName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestABI_Parses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ABI()))
	if err != nil {
		t.Fatalf("ABI does not parse: %v", err)
	}

	for _, method := range []string{
		"transfer", "approve", "transferFrom", "mint", "getContractInfo",
		"name", "symbol", "decimals", "totalSupply", "balanceOf", "allowance", "owner",
	} {
		if _, ok := parsed.Methods[method]; !ok {
			t.Errorf("ABI missing method %q", method)
		}
	}
	for _, event := range []string{"Transfer", "Approval", "ContractDeployed"} {
		if _, ok := parsed.Events[event]; !ok {
			t.Errorf("ABI missing event %q", event)
		}
	}

	// mint has no return value; the transfer family returns bool.
	if len(parsed.Methods["mint"].Outputs) != 0 {
		t.Error("mint must not declare outputs")
	}
	if len(parsed.Methods["transfer"].Outputs) != 1 {
		t.Error("transfer must return a single bool")
	}
}
