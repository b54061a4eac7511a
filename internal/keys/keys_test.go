package keys

import (
	"strings"
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/cosmos/btcutil/bech32"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	_, pub := FromSeed("alice")
	s, err := Encode(pub)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(s, HRP+"1"))

	got, err := Decode(s)
	require.NoError(t, err)
	require.Equal(t, pub, got)
}

func TestFromSeed_Deterministic(t *testing.T) {
	_, a := FromSeed("bob")
	_, b := FromSeed("bob")
	_, c := FromSeed("carol")
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestDecode_Rejects(t *testing.T) {
	_, pub := Generate()

	conv, err := bech32.ConvertBits(pub, 8, 5, true)
	require.NoError(t, err)
	other, err := bech32.Encode("cosmos", conv)
	require.NoError(t, err)
	_, err = Decode(other)
	require.ErrorContains(t, err, "unexpected prefix")

	short, err := bech32.ConvertBits(pub[:20], 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.Encode(HRP, short)
	require.NoError(t, err)
	_, err = Decode(s)
	require.Error(t, err)

	_, err = Decode("arena1notbech32")
	require.Error(t, err)

	_, err = Encode(ed25519.PubKey(pub[:5]))
	require.Error(t, err)
}
