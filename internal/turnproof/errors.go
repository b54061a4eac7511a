package turnproof

import errorsmod "cosmossdk.io/errors"

const Codespace = "turnproof"

var (
	ErrInvalidProof      = errorsmod.Register(Codespace, 1, "invalid turn proof")
	ErrClaimMismatch     = errorsmod.Register(Codespace, 2, "claimed state does not follow from evidence")
	ErrNotTurnStart      = errorsmod.Register(Codespace, 3, "base state is not at turn start")
	ErrMissingMoveProof  = errorsmod.Register(Codespace, 4, "move step lacks a transition proof")
	ErrUnsupportedAction = errorsmod.Register(Codespace, 5, "unsupported evidence")
)
