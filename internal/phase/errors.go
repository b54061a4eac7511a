package phase

import errorsmod "cosmossdk.io/errors"

const Codespace = "phase"

// A rejected transition returns exactly one of these, wrapped with detail.
var (
	ErrAuthentication         = errorsmod.Register(Codespace, 1, "authentication failure")
	ErrOrdering               = errorsmod.Register(Codespace, 2, "ordering violation")
	ErrRange                  = errorsmod.Register(Codespace, 3, "range violation")
	ErrOwnership              = errorsmod.Register(Codespace, 4, "ownership violation")
	ErrConsistency            = errorsmod.Register(Codespace, 5, "consistency violation")
	ErrDecryptionAuthenticity = errorsmod.Register(Codespace, 6, "decryption authenticity failure")
	ErrInvalidInput           = errorsmod.Register(Codespace, 7, "invalid input")
)
