// Package solidity generates the Metacore token contract source and its ABI.
//
// The output is deterministic: the deployment pipeline compiles the generated
// source with a pinned compiler (solc 0.8.19, optimize 200 runs) and the
// block explorer verifies the same bytes, so nothing here may depend on
// maps, time, or environment.
package solidity

import (
	"fmt"
	"regexp"
	"strings"
)

// Contract describes the token parameters baked into the generated source.
type Contract struct {
	Name          string
	Symbol        string
	Decimals      uint8
	InitialSupply uint64 // whole tokens, scaled by 10^Decimals in the contract
}

// DefaultContract returns the canonical Metacore parameters.
func DefaultContract() Contract {
	return Contract{
		Name:          "Metacore",
		Symbol:        "MCORE",
		Decimals:      18,
		InitialSupply: 1_000_000,
	}
}

// Generate produces the Solidity source for the token contract.
func Generate(c Contract) string {
	g := &generator{contract: c}
	return g.generate()
}

type generator struct {
	contract Contract
}

func (g *generator) generate() string {
	var b strings.Builder

	b.WriteString("// SPDX-License-Identifier: MIT\n")
	b.WriteString("pragma solidity ^0.8.19;\n\n")

	b.WriteString(fmt.Sprintf("/// @title %s\n", g.contract.Name))
	b.WriteString("/// @notice Fungible token ledger with single-owner minting\n\n")

	b.WriteString(fmt.Sprintf("contract %s {\n", ContractName(g.contract.Name)))
	b.WriteString(g.generateStateVariables())
	b.WriteString(g.generateErrors())
	b.WriteString(g.generateEvents())
	b.WriteString(g.generateConstructor())
	b.WriteString(g.generateFunctions())
	b.WriteString("}\n")

	return b.String()
}

func (g *generator) generateStateVariables() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("    string public name = %q;\n", g.contract.Name))
	b.WriteString(fmt.Sprintf("    string public symbol = %q;\n", g.contract.Symbol))
	b.WriteString(fmt.Sprintf("    uint8 public decimals = %d;\n", g.contract.Decimals))
	b.WriteString("    uint256 public totalSupply;\n")
	b.WriteString("    address public owner;\n\n")
	b.WriteString("    mapping(address => uint256) public balanceOf;\n")
	b.WriteString("    mapping(address => mapping(address => uint256)) public allowance;\n\n")

	return b.String()
}

func (g *generator) generateErrors() string {
	var b strings.Builder

	b.WriteString("    error InsufficientBalance();\n")
	b.WriteString("    error InsufficientAllowance();\n")
	b.WriteString("    error Unauthorized();\n\n")

	return b.String()
}

func (g *generator) generateEvents() string {
	var b strings.Builder

	b.WriteString("    event Transfer(address indexed from, address indexed to, uint256 value);\n")
	b.WriteString("    event Approval(address indexed owner, address indexed spender, uint256 value);\n")
	b.WriteString("    event ContractDeployed(address indexed contractAddress, address indexed deployer, uint256 timestamp);\n\n")

	return b.String()
}

func (g *generator) generateConstructor() string {
	var b strings.Builder

	b.WriteString("    constructor() {\n")
	b.WriteString("        owner = msg.sender;\n")
	b.WriteString(fmt.Sprintf("        totalSupply = %d * 10 ** uint256(decimals);\n", g.contract.InitialSupply))
	b.WriteString("        balanceOf[msg.sender] = totalSupply;\n")
	b.WriteString("        emit Transfer(address(0), msg.sender, totalSupply);\n")
	b.WriteString("        emit ContractDeployed(address(this), msg.sender, block.timestamp);\n")
	b.WriteString("    }\n\n")

	return b.String()
}

func (g *generator) generateFunctions() string {
	var b strings.Builder

	b.WriteString("    function transfer(address to, uint256 value) external returns (bool) {\n")
	b.WriteString("        if (balanceOf[msg.sender] < value) revert InsufficientBalance();\n")
	b.WriteString("        balanceOf[msg.sender] -= value;\n")
	b.WriteString("        balanceOf[to] += value;\n")
	b.WriteString("        emit Transfer(msg.sender, to, value);\n")
	b.WriteString("        return true;\n")
	b.WriteString("    }\n\n")

	b.WriteString("    function approve(address spender, uint256 value) external returns (bool) {\n")
	b.WriteString("        allowance[msg.sender][spender] = value;\n")
	b.WriteString("        emit Approval(msg.sender, spender, value);\n")
	b.WriteString("        return true;\n")
	b.WriteString("    }\n\n")

	b.WriteString("    function transferFrom(address from, address to, uint256 value) external returns (bool) {\n")
	b.WriteString("        if (balanceOf[from] < value) revert InsufficientBalance();\n")
	b.WriteString("        if (allowance[from][msg.sender] < value) revert InsufficientAllowance();\n")
	b.WriteString("        balanceOf[from] -= value;\n")
	b.WriteString("        balanceOf[to] += value;\n")
	b.WriteString("        allowance[from][msg.sender] -= value;\n")
	b.WriteString("        emit Transfer(from, to, value);\n")
	b.WriteString("        return true;\n")
	b.WriteString("    }\n\n")

	b.WriteString("    function mint(address to, uint256 value) external {\n")
	b.WriteString("        if (msg.sender != owner) revert Unauthorized();\n")
	b.WriteString("        totalSupply += value;\n")
	b.WriteString("        balanceOf[to] += value;\n")
	b.WriteString("        emit Transfer(address(0), to, value);\n")
	b.WriteString("    }\n\n")

	b.WriteString("    function getContractInfo() external view returns (string memory, string memory, uint256, address) {\n")
	b.WriteString("        return (name, symbol, totalSupply, owner);\n")
	b.WriteString("    }\n")

	return b.String()
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ContractName derives the Solidity contract identifier from the token name,
// e.g. "Metacore" -> "MetacoreToken".
func ContractName(name string) string {
	clean := nonAlnum.ReplaceAllString(name, "")
	if clean == "" {
		clean = "Unnamed"
	}
	return strings.ToUpper(clean[:1]) + clean[1:] + "Token"
}
