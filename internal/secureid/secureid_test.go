package secureid

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewMapper("unit-test-key")
	require.NoError(t, err)
	return m
}

func TestNewMapper_EmptyKey(t *testing.T) {
	t.Parallel()
	_, err := NewMapper("")
	require.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)

	ids := []string{"1", "7", "42", "999", "123456", "99999999999", "12345678901"}
	for _, id := range ids {
		sid, err := m.Encode(id)
		require.NoError(t, err, "encode %s", id)
		require.True(t, IsValidSecureID(sid), "encoded form %q must be 11 digits", sid)

		back, err := m.Decode(sid)
		require.NoError(t, err, "decode %s", sid)
		assert.Equal(t, id, back)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)
	a, err := m.Encode("12345")
	require.NoError(t, err)
	b, err := m.Encode("12345")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_NoCollisions(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)
	seen := make(map[string]string, 2000)
	for i := uint64(1); i <= 2000; i++ {
		id := strconv.FormatUint(i, 10)
		sid, err := m.Encode(id)
		require.NoError(t, err)
		if prev, ok := seen[sid]; ok {
			t.Fatalf("collision: %s and %s both map to %s", prev, id, sid)
		}
		seen[sid] = id
	}
}

func TestEncode_RejectsHexAndInvalid(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)

	_, err := m.Encode("64f1a2b3c4d5e6f708192a3b")
	assert.ErrorIs(t, err, ErrNotNumericID)

	for _, bad := range []string{"", "abc", "-5", "007", "123456789012"} {
		_, err := m.Encode(bad)
		assert.ErrorIs(t, err, ErrInvalidContentID, "input %q", bad)
	}
}

func TestAlias_NumericMatchesEncode(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)

	for _, id := range []string{"1", "42", "99999999999"} {
		sid, err := m.Encode(id)
		require.NoError(t, err)
		alias, err := m.Alias(id)
		require.NoError(t, err)
		assert.Equal(t, sid, alias, "numeric alias must stay decodable")
	}
}

func TestAlias_HexIDs(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)

	a, err := m.Alias("64f1a2b3c4d5e6f708192a3b")
	require.NoError(t, err)
	require.True(t, IsValidSecureID(a))

	// Deterministic for the same key and id.
	b, err := m.Alias("64f1a2b3c4d5e6f708192a3b")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Different ids get different aliases.
	other, err := m.Alias("64f1a2b3c4d5e6f708192a3c")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	_, err = m.Alias("not-an-id")
	assert.ErrorIs(t, err, ErrInvalidContentID)
}

func TestDecode_ShapeRejection(t *testing.T) {
	t.Parallel()
	m := newTestMapper(t)
	for _, bad := range []string{"", "123", "1234567890", "123456789012", "1234567890a", "1234567890 "} {
		_, err := m.Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidSecureID, "input %q", bad)
	}
}

func TestIsValidSecureID(t *testing.T) {
	t.Parallel()
	assert.True(t, IsValidSecureID("12345678901"))
	assert.True(t, IsValidSecureID("00000000000"))
	assert.False(t, IsValidSecureID("1234567890"))
	assert.False(t, IsValidSecureID("123456789012"))
	assert.False(t, IsValidSecureID("12345x78901"))
	assert.False(t, IsValidSecureID(""))
}

func TestIsValidContentID(t *testing.T) {
	t.Parallel()
	assert.True(t, IsValidContentID("1"))
	assert.True(t, IsValidContentID("99999999999"))
	assert.True(t, IsValidContentID("64f1a2b3c4d5e6f708192a3b"))
	assert.False(t, IsValidContentID(""))
	assert.False(t, IsValidContentID("007"))
	assert.False(t, IsValidContentID("64F1A2B3C4D5E6F708192A3B"))
	assert.False(t, IsValidContentID("64f1a2b3c4d5e6f708192a3")) // 23 chars
	assert.False(t, IsValidContentID("not-an-id"))
}

func TestIsValidAccessToken(t *testing.T) {
	t.Parallel()
	valid := "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"
	assert.Len(t, valid, 64)
	assert.True(t, IsValidAccessToken(valid))
	assert.False(t, IsValidAccessToken(valid[:63]))
	assert.False(t, IsValidAccessToken(valid+"a"))
	assert.False(t, IsValidAccessToken("A1B2C3D4E5F6A7B8C9D0E1F2A3B4C5D6E7F8A9B0C1D2E3F4A5B6C7D8E9F0A1B2"))
	assert.False(t, IsValidAccessToken(""))
}
