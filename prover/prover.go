package prover

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Prover holds the compiled conservation circuit and its Groth16 keys.
type Prover struct {
	cs           constraint.ConstraintSystem
	provingKey   groth16.ProvingKey
	verifyingKey groth16.VerifyingKey
	curve        ecc.ID
}

// Proof contains a generated solvency proof in Solidity-compatible form.
type Proof struct {
	// Proof points for on-chain verification
	A [2]*big.Int    `json:"a"`
	B [2][2]*big.Int `json:"b"`
	C [2]*big.Int    `json:"c"`

	// Flat array for L1 submission: [A.X, A.Y, B.X[0], B.X[1], B.Y[0], B.Y[1], C.X, C.Y]
	RawProof []*big.Int `json:"raw_proof"`

	// Public inputs as 32-byte hex strings (the total supply)
	PublicInputs []string `json:"public_inputs"`

	Constraints int `json:"constraints"`
}

// New compiles the conservation circuit and runs trusted setup on BN254
// (Ethereum's alt_bn128). Setup is unceremonied; on-chain use would need a
// ceremony.
func New() (*Prover, error) {
	curve := ecc.BN254

	var circuit ConservationCircuit
	cs, err := frontend.Compile(curve.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}

	return &Prover{
		cs:           cs,
		provingKey:   pk,
		verifyingKey: vk,
		curve:        curve,
	}, nil
}

// Constraints returns the number of constraints in the compiled circuit.
func (p *Prover) Constraints() int { return p.cs.GetNbConstraints() }

// ProveSnapshot generates a solvency proof for a balance snapshot.
func (p *Prover) ProveSnapshot(balances map[common.Address]*uint256.Int, totalSupply *uint256.Int) (*Proof, error) {
	assignment, err := SnapshotAssignment(balances, totalSupply)
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}

	proof, err := groth16.Prove(p.cs, p.provingKey, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}

	public, err := w.Public()
	if err != nil {
		return nil, fmt.Errorf("public witness extraction failed: %w", err)
	}

	return p.toSolidity(proof, public)
}

// VerifySnapshot proves and locally verifies a snapshot, returning an error
// if the balances do not sum to the claimed total supply.
func (p *Prover) VerifySnapshot(balances map[common.Address]*uint256.Int, totalSupply *uint256.Int) error {
	assignment, err := SnapshotAssignment(balances, totalSupply)
	if err != nil {
		return err
	}

	w, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return fmt.Errorf("witness creation failed: %w", err)
	}

	proof, err := groth16.Prove(p.cs, p.provingKey, w)
	if err != nil {
		return fmt.Errorf("proof generation failed: %w", err)
	}

	public, err := w.Public()
	if err != nil {
		return fmt.Errorf("public witness extraction failed: %w", err)
	}

	return groth16.Verify(proof, p.verifyingKey, public)
}

// ExportVerifier exports the Solidity verifier contract for the circuit.
func (p *Prover) ExportVerifier() (string, error) {
	var buf bytes.Buffer
	if err := p.verifyingKey.ExportSolidity(&buf); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	return buf.String(), nil
}

// toSolidity converts a gnark proof to the Solidity-compatible Proof form.
func (p *Prover) toSolidity(proof groth16.Proof, public witness.Witness) (*Proof, error) {
	result := &Proof{Constraints: p.cs.GetNbConstraints()}

	pubBytes, err := public.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public witness: %w", err)
	}

	// Witness binary layout: 12-byte header (curve ID, nb public, nb secret),
	// then 32-byte field elements for BN254.
	const headerSize = 12
	const elementSize = 32
	if len(pubBytes) >= headerSize {
		data := pubBytes[headerSize:]
		n := len(data) / elementSize
		result.PublicInputs = make([]string, n)
		for i := 0; i < n; i++ {
			val := new(big.Int).SetBytes(data[i*elementSize : (i+1)*elementSize])
			result.PublicInputs[i] = fmt.Sprintf("0x%064x", val)
		}
	}

	var proofBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		return nil, fmt.Errorf("marshal proof: %w", err)
	}
	proofBytes := proofBuf.Bytes()

	for i := range result.A {
		result.A[i] = big.NewInt(0)
		result.C[i] = big.NewInt(0)
		result.B[i][0] = big.NewInt(0)
		result.B[i][1] = big.NewInt(0)
	}

	// Uncompressed: A (G1, 64) + B (G2, 128) + C (G1, 64). Compressed halves
	// each point; decompression would be needed for on-chain submission.
	if len(proofBytes) >= 256 {
		result.A[0] = new(big.Int).SetBytes(proofBytes[0:32])
		result.A[1] = new(big.Int).SetBytes(proofBytes[32:64])
		result.B[0][0] = new(big.Int).SetBytes(proofBytes[64:96])
		result.B[0][1] = new(big.Int).SetBytes(proofBytes[96:128])
		result.B[1][0] = new(big.Int).SetBytes(proofBytes[128:160])
		result.B[1][1] = new(big.Int).SetBytes(proofBytes[160:192])
		result.C[0] = new(big.Int).SetBytes(proofBytes[192:224])
		result.C[1] = new(big.Int).SetBytes(proofBytes[224:256])
	} else if len(proofBytes) >= 128 {
		result.A[0] = new(big.Int).SetBytes(proofBytes[0:32])
		result.B[0][0] = new(big.Int).SetBytes(proofBytes[32:64])
		result.B[0][1] = new(big.Int).SetBytes(proofBytes[64:96])
		result.C[0] = new(big.Int).SetBytes(proofBytes[96:128])
	}

	result.RawProof = []*big.Int{
		result.A[0], result.A[1],
		result.B[0][0], result.B[0][1],
		result.B[1][0], result.B[1][1],
		result.C[0], result.C[1],
	}

	return result, nil
}
