// Package phase is the per-turn state machine. A PhaseState is a value: each
// Apply method validates one signed action against the authenticated piece
// and arena roots and returns the successor state, leaving the receiver
// untouched.
package phase

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"

	"zkarena/internal/keys"
)

type PhaseState struct {
	Nonce              uint64
	ActionsNonce       uint64
	StartingPiecesRoot fr.Element
	CurrentPiecesRoot  fr.Element
	StartingArenaRoot  fr.Element
	CurrentArenaRoot   fr.Element
	ActivePlayer       ed25519.PubKey
}

// Init opens turn `turn` for player over the given roots.
func Init(turn uint64, piecesRoot, arenaRoot fr.Element, player ed25519.PubKey) PhaseState {
	return PhaseState{
		Nonce:              turn,
		StartingPiecesRoot: piecesRoot,
		CurrentPiecesRoot:  piecesRoot,
		StartingArenaRoot:  arenaRoot,
		CurrentArenaRoot:   arenaRoot,
		ActivePlayer:       append(ed25519.PubKey(nil), player...),
	}
}

// AtTurnStart reports whether no action has been applied yet.
func (s PhaseState) AtTurnStart() bool {
	return s.ActionsNonce == 0 &&
		s.CurrentPiecesRoot.Equal(&s.StartingPiecesRoot) &&
		s.CurrentArenaRoot.Equal(&s.StartingArenaRoot)
}

func (s PhaseState) Equal(o PhaseState) bool {
	return bytes.Equal(s.Bytes(), o.Bytes())
}

// next carries the turn constants forward.
func (s PhaseState) next(nonce uint64, pieces, arena fr.Element) PhaseState {
	out := s
	out.ActivePlayer = append(ed25519.PubKey(nil), s.ActivePlayer...)
	out.ActionsNonce = nonce
	out.CurrentPiecesRoot = pieces
	out.CurrentArenaRoot = arena
	return out
}

const stateDomain = "zkarena/phase/v0"

// Bytes is the canonical encoding hashed by Digest.
func (s PhaseState) Bytes() []byte {
	out := make([]byte, 0, len(stateDomain)+1+16+4*fr.Bytes+len(s.ActivePlayer))
	out = append(out, stateDomain...)
	out = append(out, 0)
	out = binary.BigEndian.AppendUint64(out, s.Nonce)
	out = binary.BigEndian.AppendUint64(out, s.ActionsNonce)
	for _, r := range []fr.Element{s.StartingPiecesRoot, s.CurrentPiecesRoot, s.StartingArenaRoot, s.CurrentArenaRoot} {
		b := r.Bytes()
		out = append(out, b[:]...)
	}
	return append(out, s.ActivePlayer...)
}

func (s PhaseState) Digest() [32]byte {
	return blake2b.Sum256(s.Bytes())
}

type stateJSON struct {
	Nonce              uint64 `json:"nonce"`
	ActionsNonce       uint64 `json:"actionsNonce"`
	StartingPiecesRoot string `json:"startingPiecesRoot"`
	CurrentPiecesRoot  string `json:"currentPiecesRoot"`
	StartingArenaRoot  string `json:"startingArenaRoot"`
	CurrentArenaRoot   string `json:"currentArenaRoot"`
	ActivePlayerKey    string `json:"activePlayerKey"`
}

// MarshalJSON renders nonces as integers, roots as decimal strings and the
// player key in bech32.
func (s PhaseState) MarshalJSON() ([]byte, error) {
	pk, err := keys.Encode(s.ActivePlayer)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stateJSON{
		Nonce:              s.Nonce,
		ActionsNonce:       s.ActionsNonce,
		StartingPiecesRoot: s.StartingPiecesRoot.String(),
		CurrentPiecesRoot:  s.CurrentPiecesRoot.String(),
		StartingArenaRoot:  s.StartingArenaRoot.String(),
		CurrentArenaRoot:   s.CurrentArenaRoot.String(),
		ActivePlayerKey:    pk,
	})
}

func parseRoot(name, v string) (fr.Element, error) {
	var e fr.Element
	if v == "" {
		return e, fmt.Errorf("missing %s", name)
	}
	n, ok := new(big.Int).SetString(v, 10)
	if !ok || n.Sign() < 0 || n.Cmp(fr.Modulus()) >= 0 {
		return e, fmt.Errorf("%s: %q is not a canonical field element", name, v)
	}
	e.SetBigInt(n)
	return e, nil
}

func (s *PhaseState) UnmarshalJSON(b []byte) error {
	var j stateJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	pk, err := keys.Decode(j.ActivePlayerKey)
	if err != nil {
		return err
	}
	out := PhaseState{Nonce: j.Nonce, ActionsNonce: j.ActionsNonce, ActivePlayer: pk}
	for _, f := range []struct {
		name string
		src  string
		dst  *fr.Element
	}{
		{"startingPiecesRoot", j.StartingPiecesRoot, &out.StartingPiecesRoot},
		{"currentPiecesRoot", j.CurrentPiecesRoot, &out.CurrentPiecesRoot},
		{"startingArenaRoot", j.StartingArenaRoot, &out.StartingArenaRoot},
		{"currentArenaRoot", j.CurrentArenaRoot, &out.CurrentArenaRoot},
	} {
		if *f.dst, err = parseRoot(f.name, f.src); err != nil {
			return err
		}
	}
	*s = out
	return nil
}

func (s PhaseState) String() string {
	return fmt.Sprintf("phase{turn=%d actions=%d pieces=%s arena=%s}",
		s.Nonce, s.ActionsNonce, short(s.CurrentPiecesRoot), short(s.CurrentArenaRoot))
}

func short(e fr.Element) string {
	b := e.Bytes()
	return fmt.Sprintf("%x", b[:4])
}
