// Package codec holds the JSON envelopes exchanged with the game container
// and third-party verifiers.
package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"zkarena/internal/game"
	"zkarena/internal/keys"
	"zkarena/internal/phase"
	"zkarena/internal/roll"
	"zkarena/internal/tcrypto"
	"zkarena/internal/turnproof"
)

const ProofVersion = 2

func EncodeState(s phase.PhaseState) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func DecodeState(b []byte) (phase.PhaseState, error) {
	if len(b) == 0 {
		return phase.PhaseState{}, fmt.Errorf("empty state payload")
	}
	var s phase.PhaseState
	if err := json.Unmarshal(b, &s); err != nil {
		return phase.PhaseState{}, fmt.Errorf("invalid state json: %w", err)
	}
	return s, nil
}

// ProofEnvelope is the portable form of a turn proof.
type ProofEnvelope struct {
	Version     int                 `json:"version"`
	Attestor    string              `json:"attestor"`
	State       phase.PhaseState    `json:"state"`
	Depth       uint64              `json:"depth"`
	Anchor      string              `json:"anchor"`
	Accumulator string              `json:"accumulator"`
	Transition  *TransitionEnvelope `json:"transition,omitempty"`
	Sig         []byte              `json:"sig"` // base64
}

type TransitionEnvelope struct {
	Kind            game.ActionType  `json:"kind"`
	Prev            phase.PhaseState `json:"prev"`
	PrevAccumulator string           `json:"prevAccumulator"`
	MoveProof       []byte           `json:"moveProof,omitempty"` // base64
}

func EncodeProof(p *turnproof.Proof, attestor ed25519.PubKey) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil proof")
	}
	who, err := keys.Encode(attestor)
	if err != nil {
		return nil, err
	}
	env := ProofEnvelope{
		Version:     ProofVersion,
		Attestor:    who,
		State:       p.State,
		Depth:       p.Depth,
		Anchor:      hex.EncodeToString(p.Anchor[:]),
		Accumulator: hex.EncodeToString(p.Accumulator[:]),
		Sig:         p.Signature,
	}
	if tr := p.Transition; tr != nil {
		env.Transition = &TransitionEnvelope{
			Kind:            tr.Kind,
			Prev:            tr.Prev,
			PrevAccumulator: hex.EncodeToString(tr.PrevAccumulator[:]),
			MoveProof:       tr.MoveProof,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

func digestFromHex(name, s string) (turnproof.Digest, error) {
	var d turnproof.Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("%s: %w", name, err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("%s: want %d bytes, got %d", name, len(d), len(b))
	}
	copy(d[:], b)
	return d, nil
}

// DecodeProof returns the proof and the attestor key it names. Callers must
// still decide whether they trust that attestor.
func DecodeProof(b []byte) (*turnproof.Proof, ed25519.PubKey, error) {
	if len(b) == 0 {
		return nil, nil, fmt.Errorf("empty proof payload")
	}
	var env ProofEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, nil, fmt.Errorf("invalid proof json: %w", err)
	}
	if env.Version != ProofVersion {
		return nil, nil, fmt.Errorf("unsupported proof version %d", env.Version)
	}
	attestor, err := keys.Decode(env.Attestor)
	if err != nil {
		return nil, nil, fmt.Errorf("attestor: %w", err)
	}
	p := &turnproof.Proof{State: env.State, Depth: env.Depth, Signature: env.Sig}
	if p.Anchor, err = digestFromHex("anchor", env.Anchor); err != nil {
		return nil, nil, err
	}
	if p.Accumulator, err = digestFromHex("accumulator", env.Accumulator); err != nil {
		return nil, nil, err
	}
	if te := env.Transition; te != nil {
		tr := &turnproof.Transition{Kind: te.Kind, Prev: te.Prev, MoveProof: te.MoveProof}
		if tr.PrevAccumulator, err = digestFromHex("prevAccumulator", te.PrevAccumulator); err != nil {
			return nil, nil, err
		}
		p.Transition = tr
	}
	return p, attestor, nil
}

// RevealEnvelope publishes an attack roll with the arbiter's decryption
// proofs so spectators can check the dice.
type RevealEnvelope struct {
	Roll   []byte   `json:"roll"`   // base64 of roll.EncryptedAttackRoll.Bytes
	Shares [][]byte `json:"shares"` // base64 points
	Proofs [][]byte `json:"proofs"` // base64 DLEQ proofs
}

func EncodeReveal(r *roll.EncryptedAttackRoll, rv *roll.Reveal) ([]byte, error) {
	if r == nil || rv == nil {
		return nil, fmt.Errorf("nil roll or reveal")
	}
	env := RevealEnvelope{Roll: r.Bytes()}
	for i := range rv.Shares {
		env.Shares = append(env.Shares, rv.Shares[i].Bytes())
		env.Proofs = append(env.Proofs, rv.Proofs[i].Bytes())
	}
	return json.Marshal(env)
}

func DecodeReveal(b []byte) (*roll.EncryptedAttackRoll, *roll.Reveal, error) {
	var env RevealEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, nil, fmt.Errorf("invalid reveal json: %w", err)
	}
	r, err := roll.FromBytes(env.Roll)
	if err != nil {
		return nil, nil, err
	}
	rv := &roll.Reveal{}
	if len(env.Shares) != len(rv.Shares) || len(env.Proofs) != len(rv.Proofs) {
		return nil, nil, fmt.Errorf("reveal: want %d shares and proofs", len(rv.Shares))
	}
	for i := range rv.Shares {
		if rv.Shares[i], err = tcrypto.PointFromBytes(env.Shares[i]); err != nil {
			return nil, nil, fmt.Errorf("share %d: %w", i, err)
		}
		if rv.Proofs[i], err = tcrypto.DLEQProofFromBytes(env.Proofs[i]); err != nil {
			return nil, nil, fmt.Errorf("proof %d: %w", i, err)
		}
	}
	return r, rv, nil
}
