package prover

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
)

// SaveKeys persists the compiled circuit and keys to dir, so setup is not
// repeated each run. Files written:
//
//	circuit.r1cs    — constraint system
//	proving.key     — proving key
//	verifying.key   — verifying key
//	circuit.hash    — SHA-256 of the constraint system (hex)
func (p *Prover) SaveKeys(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}

	if err := writeTo(filepath.Join(dir, "circuit.r1cs"), p.cs); err != nil {
		return fmt.Errorf("save constraint system: %w", err)
	}
	if err := writeTo(filepath.Join(dir, "proving.key"), p.provingKey); err != nil {
		return fmt.Errorf("save proving key: %w", err)
	}
	if err := writeTo(filepath.Join(dir, "verifying.key"), p.verifyingKey); err != nil {
		return fmt.Errorf("save verifying key: %w", err)
	}

	h := sha256.New()
	if _, err := p.cs.WriteTo(h); err != nil {
		return fmt.Errorf("hash constraint system: %w", err)
	}
	hash := fmt.Sprintf("%x", h.Sum(nil))
	if err := os.WriteFile(filepath.Join(dir, "circuit.hash"), []byte(hash), 0o644); err != nil {
		return fmt.Errorf("save circuit hash: %w", err)
	}

	return nil
}

// LoadKeys loads a previously saved prover from dir.
func LoadKeys(dir string) (*Prover, error) {
	curve := ecc.BN254

	cs := groth16.NewCS(curve)
	if err := readFrom(filepath.Join(dir, "circuit.r1cs"), cs); err != nil {
		return nil, fmt.Errorf("load constraint system: %w", err)
	}

	pk := groth16.NewProvingKey(curve)
	if err := readFrom(filepath.Join(dir, "proving.key"), pk); err != nil {
		return nil, fmt.Errorf("load proving key: %w", err)
	}

	vk := groth16.NewVerifyingKey(curve)
	if err := readFrom(filepath.Join(dir, "verifying.key"), vk); err != nil {
		return nil, fmt.Errorf("load verifying key: %w", err)
	}

	return &Prover{
		cs:           cs,
		provingKey:   pk,
		verifyingKey: vk,
		curve:        curve,
	}, nil
}

func writeTo(path string, src io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = src.WriteTo(f)
	return err
}

func readFrom(path string, dst io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = dst.ReadFrom(f)
	return err
}
