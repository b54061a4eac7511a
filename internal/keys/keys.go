// Package keys converts player and service ed25519 public keys to and from
// their bech32 text form.
package keys

import (
	"fmt"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/cosmos/btcutil/bech32"
)

const HRP = "arena"

func Encode(pub ed25519.PubKey) (string, error) {
	if len(pub) != ed25519.PubKeySize {
		return "", fmt.Errorf("keys: pubkey must be %d bytes, got %d", ed25519.PubKeySize, len(pub))
	}
	conv, err := bech32.ConvertBits(pub, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("keys: %w", err)
	}
	return bech32.Encode(HRP, conv)
}

// MustEncode is for logging and tests where the key length is known.
func MustEncode(pub ed25519.PubKey) string {
	s, err := Encode(pub)
	if err != nil {
		panic(err)
	}
	return s
}

func Decode(s string) (ed25519.PubKey, error) {
	hrp, data, err := bech32.DecodeToBase256(s)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	if hrp != HRP {
		return nil, fmt.Errorf("keys: unexpected prefix %q, want %q", hrp, HRP)
	}
	if len(data) != ed25519.PubKeySize {
		return nil, fmt.Errorf("keys: decoded %d bytes, want %d", len(data), ed25519.PubKeySize)
	}
	return ed25519.PubKey(data), nil
}

// FromSeed derives a deterministic key pair, for fixtures and demos.
func FromSeed(seed string) (ed25519.PrivKey, ed25519.PubKey) {
	priv := ed25519.GenPrivKeyFromSecret([]byte(seed))
	return priv, priv.PubKey().(ed25519.PubKey)
}

func Generate() (ed25519.PrivKey, ed25519.PubKey) {
	priv := ed25519.GenPrivKey()
	return priv, priv.PubKey().(ed25519.PubKey)
}
