package collections_test

import (
	"testing"

	"github.com/flowcore/flowcore/internal/collections"
	"github.com/stretchr/testify/assert"
)

func TestDeterministicMap_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    collections.DeterministicMap
		expected string
	}{
		{
			name:     "EmptyMap",
			input:    collections.DeterministicMap{},
			expected: `{}`,
		},
		{
			name:     "NilMap",
			input:    nil,
			expected: `null`,
		},
		{
			name: "SingleKey",
			input: collections.DeterministicMap{
				"key": "value",
			},
			expected: `{"key":"value"}`,
		},
		{
			name: "MultipleKeysSorted",
			input: collections.DeterministicMap{
				"zebra":  "animal",
				"apple":  "fruit",
				"banana": "fruit",
				"carrot": "vegetable",
			},
			expected: `{"apple":"fruit","banana":"fruit","carrot":"vegetable","zebra":"animal"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.MarshalJSON()
			assert.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(got))
		})
	}
}

func TestDeterministicMap_SortedKeys(t *testing.T) {
	m := collections.DeterministicMap{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, m.SortedKeys())
}
