package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zeta":  int64(1),
		"alpha": int64(2),
		"mid":   int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(out))
}

func TestMarshalCanonical_NestedStructure(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"events": []any{
			map[string]any{"seq": uint64(1), "core_id": uint8(0)},
			map[string]any{"seq": uint64(2), "core_id": uint8(1)},
		},
		"name": "trace",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"events":[{"core_id":0,"seq":1},{"core_id":1,"seq":2}],"name":"trace"}`,
		string(out))
}

func TestMarshalCanonical_FloatsForbidden(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_NullForbidden(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	v := map[string]any{
		"b": []any{int64(1), int64(2)},
		"a": "x",
		"c": true,
	}

	first, err := MarshalCanonical(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(v)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	// U+2028 must appear literally, not as  .
	out, err := MarshalCanonical("a b")
	require.NoError(t, err)
	assert.Equal(t, "\"a b\"", string(out))

	// A literal backslash followed by "u2028" text must stay escaped.
	out, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(out))
}
