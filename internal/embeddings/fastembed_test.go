//go:build cgo

package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFastEmbedProviderUnknownModel(t *testing.T) {
	_, err := NewFastEmbedProvider(Config{Model: "made-up/model"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestModelDimensions(t *testing.T) {
	for name, model := range modelMapping {
		dim, ok := modelDimensions[model]
		assert.True(t, ok, "model %s has no dimension entry", name)
		assert.Greater(t, dim, 0)
	}
}
