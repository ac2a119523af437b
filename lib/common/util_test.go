package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniqueUUIDWithSatori(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10000; i++ {
		id := GetUniqueIDFromUUID()
		require.False(t, seen[id], "duplicated id: %s", id)
		seen[id] = true
	}

	require.Len(t, GenerateUUID(), 36)
}

func TestGetENVValue(t *testing.T) {
	t.Setenv("GOVERN_TEST_VALUE", "findme")
	require.Equal(t, "findme", GetENVValue("GOVERN_TEST_VALUE", "default"))
	require.Equal(t, "default", GetENVValue("GOVERN_TEST_VALUE_MISSING", "default"))
}

func TestIsExists(t *testing.T) {
	dir := t.TempDir()
	require.True(t, IsExists(dir))

	missing := filepath.Join(dir, "missing")
	require.True(t, IsNotExists(missing))

	require.NoError(t, os.WriteFile(missing, []byte("x"), 0600))
	require.True(t, IsExists(missing))
}

func TestMustUnmarshalJSON(t *testing.T) {
	var v map[string]string
	MustUnmarshalJSON(MustMarshalJSON(map[string]string{"a": "b"}), &v)
	require.Equal(t, "b", v["a"])

	require.Panics(t, func() { MustUnmarshalJSON([]byte("{"), &v) })
}
