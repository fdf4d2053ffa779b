// Package embeddings generates text embeddings with local ONNX models.
package embeddings

import "errors"

var (
	// ErrInvalidConfig is returned when the provider configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyInput is returned when the input texts are empty or nil.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrEmbeddingFailed is returned when embedding generation fails.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)
