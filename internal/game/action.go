package game

import (
	"encoding/binary"
	"fmt"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type ActionType uint8

const (
	ActionMove   ActionType = 0
	ActionRanged ActionType = 1
	ActionMelee  ActionType = 2
)

func (t ActionType) String() string {
	switch t {
	case ActionMove:
		return "move"
	case ActionRanged:
		return "ranged"
	case ActionMelee:
		return "melee"
	default:
		return fmt.Sprintf("action(%d)", uint8(t))
	}
}

func (t ActionType) IsAttack() bool { return t == ActionRanged || t == ActionMelee }

// Action is what a player signs. Turn pins it to one turn so it cannot be
// replayed after actionsNonce resets. Params commits to the action's
// argument: the destination hash for a move, the target piece hash for an
// attack.
type Action struct {
	Turn    uint64     `json:"turn"`
	Nonce   uint64     `json:"nonce"`
	Type    ActionType `json:"type"`
	Params  fr.Element `json:"params"`
	PieceID uint64     `json:"pieceId"`
}

func NewMove(turn, nonce, pieceID uint64, dest Position) Action {
	return Action{Turn: turn, Nonce: nonce, Type: ActionMove, Params: dest.Hash(), PieceID: pieceID}
}

func NewAttack(turn, nonce uint64, kind ActionType, attacker uint64, target Piece) Action {
	return Action{Turn: turn, Nonce: nonce, Type: kind, Params: target.Hash(), PieceID: attacker}
}

const actionSignDomain = "zkarena/action/v1"

// SignBytes = DOMAIN || 0x00 || turn(be64) || nonce(be64) || type || params(32) || pieceId(be64)
func (a Action) SignBytes() []byte {
	params := a.Params.Bytes()
	out := make([]byte, 0, len(actionSignDomain)+1+8+8+1+len(params)+8)
	out = append(out, actionSignDomain...)
	out = append(out, 0)
	out = binary.BigEndian.AppendUint64(out, a.Turn)
	out = binary.BigEndian.AppendUint64(out, a.Nonce)
	out = append(out, byte(a.Type))
	out = append(out, params[:]...)
	out = binary.BigEndian.AppendUint64(out, a.PieceID)
	return out
}

func (a Action) Sign(priv ed25519.PrivKey) ([]byte, error) {
	return priv.Sign(a.SignBytes())
}

func (a Action) VerifySignature(pub ed25519.PubKey, sig []byte) bool {
	if len(pub) != ed25519.PubKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return pub.VerifySignature(a.SignBytes(), sig)
}
