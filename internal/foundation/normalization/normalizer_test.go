package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnum string

const (
	enumAlpha testEnum = "alpha"
	enumBeta  testEnum = "beta"
)

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]testEnum{"Alpha": enumAlpha, "beta": enumBeta}, enumAlpha)

	tests := []struct {
		input string
		want  testEnum
	}{
		{"alpha", enumAlpha},
		{"  BETA ", enumBeta},
		{"unknown", enumAlpha},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(tt.input), tt.input)
	}

	v, err := n.NormalizeWithError("Beta")
	require.NoError(t, err)
	assert.Equal(t, enumBeta, v)

	_, err = n.NormalizeWithError("gamma")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[alpha beta]")
	assert.Equal(t, []string{"alpha", "beta"}, n.ValidKeys())
}
