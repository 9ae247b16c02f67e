package am

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigIntrospection(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ConfigFileName), `
[parser]
backend = "pattern"
classifier_api_key = "hidden"
`)
	t.Setenv("QFACTOR_CACHE_CAPACITY", "10")

	ci, err := GetConfigIntrospection()
	require.NoError(t, err)
	require.Len(t, ci.ConfigFiles, 1)

	byKey := make(map[string]SettingInfo)
	for _, s := range ci.Settings {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceProject, byKey["parser.backend"].Source)
	assert.Equal(t, "pattern", byKey["parser.backend"].Value)
	assert.Equal(t, "********", byKey["parser.classifier_api_key"].Value)
	assert.Equal(t, SourceEnvironment, byKey["cache.capacity"].Source)
	assert.Equal(t, "QFACTOR_CACHE_CAPACITY", byKey["cache.capacity"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["server.port"].Source)

	summary := ci.Summary()
	assert.Equal(t, 2, summary[SourceProject])
	assert.Equal(t, 1, summary[SourceEnvironment])
	assert.Greater(t, summary[SourceDefault], 10)
}
