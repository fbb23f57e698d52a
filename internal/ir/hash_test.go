package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueHashDeterminism(t *testing.T) {
	v := IRObject{"foo": IRString("foo"), "bar": IRObject{"bar": IRInt(100)}}

	h1, err := ValueHash(v)
	require.NoError(t, err)
	h2, err := ValueHash(v)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ValueHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestValueHashKeyOrderIndependent(t *testing.T) {
	a := NewIRObjectFromPairs(O("a", IRInt(1)), O("b", IRInt(2)))
	b := NewIRObjectFromPairs(O("b", IRInt(2)), O("a", IRInt(1)))
	assert.Equal(t, MustValueHash(a), MustValueHash(b))
}

func TestValueHashNumberRepresentation(t *testing.T) {
	assert.Equal(t, MustValueHash(IRInt(2)), MustValueHash(IRFloat(2)))
	assert.NotEqual(t, MustValueHash(IRInt(2)), MustValueHash(IRString("2")))
}

func TestValueHashNilIsNull(t *testing.T) {
	assert.Equal(t, MustValueHash(IRNull{}), MustValueHash(nil))
}

func TestEntryHashChangesWithInput(t *testing.T) {
	args := IRObject{"biz": IRInt(1)}

	h1, err := EntryHash("id_2", 2, 0, "accumulate", args)
	require.NoError(t, err)
	h2, err := EntryHash("id_3", 2, 0, "accumulate", args)
	require.NoError(t, err)
	h3, err := EntryHash("id_2", 2, 1, "accumulate", args)
	require.NoError(t, err)
	h4, err := EntryHash("id_2", 2, 0, "gather", args)
	require.NoError(t, err)
	h5, err := EntryHash("id_2", 2, 0, "accumulate", IRObject{"biz": IRInt(2)})
	require.NoError(t, err)

	for _, other := range []string{h2, h3, h4, h5} {
		assert.NotEqual(t, h1, other)
	}
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`"x"`)
	assert.NotEqual(t, hashWithDomain(DomainValue, data), hashWithDomain(DomainEntry, data))
}
