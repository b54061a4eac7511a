package circuit

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// MoveProver owns the compiled move circuit and its groth16 keys. Setup is
// the single-party development setup; keys are not meant to leave the
// process.
type MoveProver struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

var (
	compileOnce sync.Once
	compiled    constraint.ConstraintSystem
	compileErr  error
)

func compileMove() (constraint.ConstraintSystem, error) {
	compileOnce.Do(func() {
		compiled, compileErr = frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &MoveCircuit{})
		if compileErr != nil {
			compileErr = fmt.Errorf("compile move circuit: %w", compileErr)
		}
	})
	return compiled, compileErr
}

func NewMoveProver() (*MoveProver, error) {
	ccs, err := compileMove()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	return &MoveProver{ccs: ccs, pk: pk, vk: vk}, nil
}

// Constraints reports the circuit size.
func (p *MoveProver) Constraints() int { return p.ccs.GetNbConstraints() }

func (p *MoveProver) Prove(w MoveWitness) ([]byte, error) {
	assignment, err := w.Assignment()
	if err != nil {
		return nil, err
	}
	full, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(p.ccs, p.pk, full)
	if err != nil {
		return nil, fmt.Errorf("prove move: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode proof: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *MoveProver) Verify(proofBytes []byte, st MoveStatement) error {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}
	var assignment MoveCircuit
	st.assign(&assignment)
	pub, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}
	if err := groth16.Verify(proof, p.vk, pub); err != nil {
		return fmt.Errorf("verify move proof: %w", err)
	}
	return nil
}
