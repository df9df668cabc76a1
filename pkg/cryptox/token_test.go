package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, a, 43)

	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("activation-token")
	require.Equal(t, fp, FingerprintToken("activation-token"))
	require.NotEqual(t, fp, FingerprintToken("other-token"))
	require.Len(t, fp, 43)
}
