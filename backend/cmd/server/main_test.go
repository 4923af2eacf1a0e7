package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
entities:
  - name: Product
    collections: [tags]
  - name: Person
    label: User
`), 0o600))

	mappings, err := loadMappings(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Product", "Person"}, mappings.Names())
	assert.ElementsMatch(t, []string{"Product", "User"}, labels(mappings))
}

func TestLoadMappings_MissingFile(t *testing.T) {
	_, err := loadMappings(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBundledMappingLoads(t *testing.T) {
	mappings, err := loadMappings(filepath.Join("..", "..", "..", "mapping.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, mappings.Names())
}
