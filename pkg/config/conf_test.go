package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/revscore/pkg/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestConfig(t *testing.T) {
	testDir := t.TempDir()

	c1, err := ReadOrCreate(testDir)
	assert.NoError(t, err)
	assert.NotNil(t, c1)
	assert.Equal(t, corpus.DefaultScale(), c1.Scale)
	assert.Equal(t, defaultWorkers, c1.Workers)

	fb := 1.5
	c1.Workers = 2
	c1.Strict = true
	c1.Fallback = &fb
	c1.Format = FormatYAML

	err = Save(testDir, c1)
	assert.NoError(t, err)

	c2, err := ReadOrCreate(testDir)
	assert.NoError(t, err)
	assert.NotNil(t, c2)
	assert.Equal(t, c1.Workers, c2.Workers)
	assert.Equal(t, c1.Strict, c2.Strict)
	assert.Equal(t, c1.Format, c2.Format)
	require.NotNil(t, c2.Fallback)
	assert.Equal(t, fb, *c2.Fallback)
}

func TestReadOrCreate_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "conf")
	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.NotNil(t, c)
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
}

func TestReadOrCreate_Errors(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("scale: [nope"), fileMode))
	_, err = ReadOrCreate(dir)
	assert.Error(t, err)
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	c := Default()
	c.Scale = corpus.Scale{Min: 4, Max: 4}
	assert.Error(t, c.Validate())

	c = Default()
	out := 7.0
	c.Fallback = &out
	assert.Error(t, c.Validate())

	c = Default()
	c.Workers = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.Format = "xml"
	assert.Error(t, c.Validate())
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"REVSCORE_SCALE_MIN": "1",
		"REVSCORE_SCALE_MAX": "10",
		"REVSCORE_FALLBACK":  "5.5",
		"REVSCORE_STRICT":    "true",
		"REVSCORE_WORKERS":   "8",
		"REVSCORE_FORMAT":    " YAML ",
		"REVSCORE_LOG_LEVEL": "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, corpus.Scale{Min: 1, Max: 10}, c.Scale)
	require.NotNil(t, c.Fallback)
	assert.Equal(t, 5.5, *c.Fallback)
	assert.True(t, c.Strict)
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, FormatYAML, c.Format)
	assert.Equal(t, "debug", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, k := range []string{
		"REVSCORE_SCALE_MIN",
		"REVSCORE_SCALE_MAX",
		"REVSCORE_FALLBACK",
		"REVSCORE_STRICT",
		"REVSCORE_WORKERS",
	} {
		c := Default()
		assert.Error(t, c.ApplyEnv(envMap(map[string]string{k: "not-a-value"})), k)
	}
}

func TestCorpusOptions(t *testing.T) {
	c := Default()
	assert.Equal(t, corpus.PolicySkip, c.CorpusOptions().Policy)
	c.Strict = true
	assert.Equal(t, corpus.PolicyStrict, c.CorpusOptions().Policy)
	assert.Equal(t, c.Scale, c.CorpusOptions().Scale)
}

func TestLoad(t *testing.T) {
	t.Setenv("REVSCORE_WORKERS", "3")
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Workers)

	t.Setenv("REVSCORE_WORKERS", "0")
	_, err = Load(t.TempDir())
	assert.Error(t, err)
}
