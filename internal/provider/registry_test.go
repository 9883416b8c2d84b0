package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.Get("ollama")
	require.NoError(t, err)
	assert.Equal(t, OllamaName, p.Name())
	assert.Equal(t, KindOllama, p.Kind())

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistry_Order(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{OpenRouterName, FeatherlessName, OllamaName}, r.Names())
	assert.Equal(t, OpenRouterName, r.Default().Name())
	assert.Len(t, r.All(), 3)
}

func TestRegistry_DuplicateReplaces(t *testing.T) {
	first := NewOllama()
	second := NewOllama()
	r := NewRegistry(first, NewFeatherless(), second)

	assert.Equal(t, []string{OllamaName, FeatherlessName}, r.Names())
	p, err := r.Get(OllamaName)
	require.NoError(t, err)
	assert.Same(t, second, p)
}

func TestRegistry_StaticModels(t *testing.T) {
	r := DefaultRegistry()
	want := len(NewOpenRouter().StaticModels()) + len(NewFeatherless().StaticModels())
	assert.Len(t, r.StaticModels(), want)
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Default())
	assert.Empty(t, r.Names())
}
