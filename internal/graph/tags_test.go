package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTagsClone(t *testing.T) {
	orig := Tags{"a": "1"}
	clone := orig.Clone()
	clone["a"] = "2"

	assert.Equal(t, "1", orig["a"])

	var none Tags
	assert.NotNil(t, none.Clone())
}

func TestTagsMerge(t *testing.T) {
	t.Run("disjoint keys union", func(t *testing.T) {
		merged, conflict := Tags{"a": "1"}.Merge(Tags{"b": "2"})
		require.Empty(t, conflict)
		assert.Equal(t, Tags{"a": "1", "b": "2"}, merged)
	})

	t.Run("same key same value is fine", func(t *testing.T) {
		merged, conflict := Tags{"a": "1"}.Merge(Tags{"a": "1"})
		require.Empty(t, conflict)
		assert.Equal(t, Tags{"a": "1"}, merged)
	})

	t.Run("same key different value reports the key", func(t *testing.T) {
		merged, conflict := Tags{"a": "1"}.Merge(Tags{"a": "2"})
		assert.Equal(t, "a", conflict)
		assert.Nil(t, merged)
	})

	t.Run("receiver is untouched", func(t *testing.T) {
		orig := Tags{"a": "1"}
		merged, _ := orig.Merge(Tags{"b": "2"})
		merged["c"] = "3"
		assert.Equal(t, Tags{"a": "1"}, orig)
	})
}

func TestTagsString_Sorted(t *testing.T) {
	tags := Tags{"process": "Routing", "catchment": "3", "hru": "Forest"}
	assert.Equal(t, "{catchment=3, hru=Forest, process=Routing}", tags.String())
	assert.Equal(t, "{}", Tags{}.String())
}

func TestProperty_IdentityKeyMatchesEquality(t *testing.T) {
	// Two tag sets produce the same identity key exactly when they are equal.
	rapid.Check(t, func(rt *rapid.T) {
		gen := rapid.MapOfN(
			rapid.SampledFrom([]string{"catchment", "hru", "lu", "process", "constituent"}),
			rapid.StringMatching(`[A-Za-z0-9]{1,8}`),
			0, 5,
		)
		a := Tags(gen.Draw(rt, "a"))
		b := Tags(gen.Draw(rt, "b"))

		require.Equal(t, a.Equal(b), identityKey("K", a) == identityKey("K", b))
		require.Equal(t, identityKey("K", a), identityKey("K", a.Clone()))
	})
}
