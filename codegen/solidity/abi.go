package solidity

// ABI returns the JSON ABI of the generated contract. The operation surface
// is fixed (names, argument order, and return shapes are part of the
// externally observed contract), so the ABI does not vary with the token
// parameters.
func ABI() string {
	return `[
  {"type": "constructor", "inputs": [], "stateMutability": "nonpayable"},
  {"type": "function", "name": "name", "inputs": [], "outputs": [{"name": "", "type": "string"}], "stateMutability": "view"},
  {"type": "function", "name": "symbol", "inputs": [], "outputs": [{"name": "", "type": "string"}], "stateMutability": "view"},
  {"type": "function", "name": "decimals", "inputs": [], "outputs": [{"name": "", "type": "uint8"}], "stateMutability": "view"},
  {"type": "function", "name": "totalSupply", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view"},
  {"type": "function", "name": "owner", "inputs": [], "outputs": [{"name": "", "type": "address"}], "stateMutability": "view"},
  {"type": "function", "name": "balanceOf", "inputs": [{"name": "", "type": "address"}], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view"},
  {"type": "function", "name": "allowance", "inputs": [{"name": "", "type": "address"}, {"name": "", "type": "address"}], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view"},
  {"type": "function", "name": "transfer", "inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "outputs": [{"name": "", "type": "bool"}], "stateMutability": "nonpayable"},
  {"type": "function", "name": "approve", "inputs": [{"name": "spender", "type": "address"}, {"name": "value", "type": "uint256"}], "outputs": [{"name": "", "type": "bool"}], "stateMutability": "nonpayable"},
  {"type": "function", "name": "transferFrom", "inputs": [{"name": "from", "type": "address"}, {"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "outputs": [{"name": "", "type": "bool"}], "stateMutability": "nonpayable"},
  {"type": "function", "name": "mint", "inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "outputs": [], "stateMutability": "nonpayable"},
  {"type": "function", "name": "getContractInfo", "inputs": [], "outputs": [{"name": "", "type": "string"}, {"name": "", "type": "string"}, {"name": "", "type": "uint256"}, {"name": "", "type": "address"}], "stateMutability": "view"},
  {"type": "event", "name": "Transfer", "inputs": [{"name": "from", "type": "address", "indexed": true}, {"name": "to", "type": "address", "indexed": true}, {"name": "value", "type": "uint256", "indexed": false}], "anonymous": false},
  {"type": "event", "name": "Approval", "inputs": [{"name": "owner", "type": "address", "indexed": true}, {"name": "spender", "type": "address", "indexed": true}, {"name": "value", "type": "uint256", "indexed": false}], "anonymous": false},
  {"type": "event", "name": "ContractDeployed", "inputs": [{"name": "contractAddress", "type": "address", "indexed": true}, {"name": "deployer", "type": "address", "indexed": true}, {"name": "timestamp", "type": "uint256", "indexed": false}], "anonymous": false},
  {"type": "error", "name": "InsufficientBalance", "inputs": []},
  {"type": "error", "name": "InsufficientAllowance", "inputs": []},
  {"type": "error", "name": "Unauthorized", "inputs": []}
]`
}
