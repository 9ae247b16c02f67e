package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/parser"
)

func loadedConfig(t *testing.T) *am.Config {
	t.Helper()
	isolate(t)
	cfg, err := am.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuildParserPattern(t *testing.T) {
	cfg := loadedConfig(t)

	p, err := buildParser(cfg)
	require.NoError(t, err)
	assert.Equal(t, parser.BackendPattern, p.Backend().Kind())
}

func TestBuildParserMissingCatalog(t *testing.T) {
	cfg := loadedConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildParser(cfg)
	require.Error(t, err)
	assert.Contains(t, errors.GetAllHints(err), "check catalog.path or unset it to use the built-in catalog")
}

func TestBuildParserUnknownBackend(t *testing.T) {
	cfg := loadedConfig(t)
	cfg.Parser.Backend = "quantum"

	_, err := buildParser(cfg)
	assert.Error(t, err)
}

func TestNewClassifier(t *testing.T) {
	cfg := loadedConfig(t)

	clf, err := newClassifier(cfg)
	require.NoError(t, err)
	assert.Nil(t, clf)

	cfg.Parser.ClassifierURL = "http://127.0.0.1:9/classify"
	cfg.Parser.ClassifierAllowPrivate = true
	clf, err = newClassifier(cfg)
	require.NoError(t, err)
	assert.NotNil(t, clf)

	cfg.Parser.Backend = "auto"
	p, err := buildParser(cfg)
	require.NoError(t, err)
	assert.Equal(t, parser.BackendTransformer, p.Backend().Kind())
}
