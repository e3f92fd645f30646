// Package prover generates zero-knowledge solvency proofs for token ledger
// snapshots: a Groth16 proof that a private balance vector sums to the public
// total supply, without revealing individual balances.
package prover

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// NumSlots is the fixed width of the balance vector. Snapshots with fewer
// holders are zero-padded; snapshots with more cannot be proven with this
// circuit.
const NumSlots = 16

// ConservationCircuit proves that the sum of a private balance vector equals
// the public total supply.
type ConservationCircuit struct {
	Balances    [NumSlots]frontend.Variable
	TotalSupply frontend.Variable `gnark:",public"`
}

// Define builds the conservation constraint: Σ Balances == TotalSupply.
func (c *ConservationCircuit) Define(api frontend.API) error {
	sum := frontend.Variable(0)
	for i := 0; i < NumSlots; i++ {
		sum = api.Add(sum, c.Balances[i])
	}
	api.AssertIsEqual(sum, c.TotalSupply)
	return nil
}

// SnapshotAssignment builds a witness assignment from a balance snapshot and
// its claimed total supply. Fails if the snapshot has more than NumSlots
// holders, or if any value reaches the BN254 scalar field modulus (~2^254):
// witness values reduce mod r, so an out-of-range balance would silently
// alias a smaller one. Unused slots are zero.
func SnapshotAssignment(balances map[common.Address]*uint256.Int, totalSupply *uint256.Int) (*ConservationCircuit, error) {
	if len(balances) > NumSlots {
		return nil, fmt.Errorf("prover: snapshot has %d holders, circuit supports at most %d", len(balances), NumSlots)
	}

	modulus := ecc.BN254.ScalarField()
	if totalSupply.ToBig().Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("prover: total supply %s exceeds the scalar field", totalSupply.Dec())
	}

	var assignment ConservationCircuit
	i := 0
	for addr, bal := range balances {
		if bal.ToBig().Cmp(modulus) >= 0 {
			return nil, fmt.Errorf("prover: balance of %s exceeds the scalar field", addr)
		}
		assignment.Balances[i] = bal.ToBig()
		i++
	}
	for ; i < NumSlots; i++ {
		assignment.Balances[i] = 0
	}
	assignment.TotalSupply = totalSupply.ToBig()
	return &assignment, nil
}
