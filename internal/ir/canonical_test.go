package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"apple": "a<b",
		"mid":   []ClassID{3, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"a<b","mid":[3,1],"zebra":1}`, string(data))
}

func TestMarshalCanonical_Bindings(t *testing.T) {
	data, err := MarshalCanonical(map[string][]ClassID{
		"?b":    {2},
		"?a":    {1},
		"?rest": {},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"?a":[1],"?b":[2],"?rest":[]}`, string(data))
}

func TestMarshalCanonical_Term(t *testing.T) {
	data, err := MarshalCanonical(T("+", T("x")))
	require.NoError(t, err)
	assert.Equal(t, `{"children":[{"children":[],"op":"x"}],"op":"+"}`, string(data))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	data, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(data))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))

	data, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data), "escaped backslash stays escaped")
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": 2.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object["x"]`)

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes as a surrogate pair starting 0xD83D, which sorts
	// before U+FF21 in UTF-16 but after it in UTF-8.
	keys := SortedKeys(map[string]int{"\uFF21": 1, "\U0001F600": 2, "a": 3})
	assert.Equal(t, []string{"a", "\U0001F600", "\uFF21"}, keys)
}
