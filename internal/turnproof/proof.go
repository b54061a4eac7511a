// Package turnproof chains per-action transitions into one attestation of a
// whole turn. Each Step verifies the prior proof, re-executes one action
// against the prior public state, and signs the result together with a
// running accumulator over every state digest in the chain. Verifying the
// last proof is enough to trust the final state.
package turnproof

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"zkarena/internal/game"
	"zkarena/internal/phase"
)

type Digest = [32]byte

// Proof attests State. Actions and witnesses are never included.
type Proof struct {
	State       phase.PhaseState
	Depth       uint64
	Anchor      Digest
	Accumulator Digest
	Transition  *Transition
	Signature   []byte
}

// Transition describes the step that produced a non-base proof.
type Transition struct {
	Kind game.ActionType
	// Prev is the public state the step started from. Its digest is the
	// link into the accumulator and its current roots are the old roots of
	// the move circuit.
	Prev            phase.PhaseState
	PrevAccumulator Digest
	// MoveProof is a groth16 proof of the move circuit, when the prover has
	// one configured.
	MoveProof []byte
}

const (
	seedDomain = "zkarena/turnproof/seed/v0"
	foldDomain = "zkarena/turnproof/fold/v0"
	signDomain = "zkarena/turnproof/sig/v1"
)

func seed(anchor Digest) Digest {
	buf := make([]byte, 0, len(seedDomain)+32)
	buf = append(buf, seedDomain...)
	return blake2b.Sum256(append(buf, anchor[:]...))
}

// fold absorbs one transition into the accumulator.
func fold(acc, prev, next Digest) Digest {
	buf := make([]byte, 0, len(foldDomain)+96)
	buf = append(buf, foldDomain...)
	buf = append(buf, acc[:]...)
	buf = append(buf, prev[:]...)
	return blake2b.Sum256(append(buf, next[:]...))
}

func (t *Transition) PrevDigest() Digest { return t.Prev.Digest() }

// continues reports whether next can follow Prev within one turn.
func (t *Transition) continues(next phase.PhaseState) bool {
	prev := t.Prev
	return prev.Nonce == next.Nonce &&
		prev.ActionsNonce < next.ActionsNonce &&
		prev.StartingPiecesRoot.Equal(&next.StartingPiecesRoot) &&
		prev.StartingArenaRoot.Equal(&next.StartingArenaRoot) &&
		bytes.Equal(prev.ActivePlayer, next.ActivePlayer)
}

func (t *Transition) bytes() []byte {
	if t == nil {
		return []byte{0}
	}
	prev := t.Prev.Bytes()
	out := make([]byte, 0, 2+len(prev)+32+4+len(t.MoveProof))
	out = append(out, 1, byte(t.Kind))
	out = append(out, prev...)
	out = append(out, t.PrevAccumulator[:]...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(t.MoveProof)))
	return append(out, t.MoveProof...)
}

// SignBytes covers every field but the signature.
func (p *Proof) SignBytes() []byte {
	st := p.State.Bytes()
	tr := p.Transition.bytes()
	out := make([]byte, 0, len(signDomain)+1+len(st)+8+64+len(tr))
	out = append(out, signDomain...)
	out = append(out, 0)
	out = append(out, st...)
	out = binary.BigEndian.AppendUint64(out, p.Depth)
	out = append(out, p.Anchor[:]...)
	out = append(out, p.Accumulator[:]...)
	return append(out, tr...)
}
