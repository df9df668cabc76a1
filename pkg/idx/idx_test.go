package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidULIDs(t *testing.T) {
	t.Parallel()

	id := New()
	require.False(t, id.IsZero())

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewIsMonotonicWithinProcess(t *testing.T) {
	t.Parallel()

	prev := New()
	for range 100 {
		next := New()
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "   ", "not-a-ulid", "0123"} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)
	require.Equal(t, at.UnixMilli(), id.Time().UnixMilli())
}
