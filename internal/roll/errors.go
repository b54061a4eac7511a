package roll

import errorsmod "cosmossdk.io/errors"

const Codespace = "roll"

var (
	ErrInvalidSignature = errorsmod.Register(Codespace, 1, "invalid authority signature")
	ErrArbiterMismatch  = errorsmod.Register(Codespace, 2, "roll encrypted to a different arbiter")
	ErrInvalidDie       = errorsmod.Register(Codespace, 3, "decrypted die outside 1..6")
	ErrMalformed        = errorsmod.Register(Codespace, 4, "malformed roll encoding")
	ErrInvalidReveal    = errorsmod.Register(Codespace, 5, "invalid decryption proof")
)
