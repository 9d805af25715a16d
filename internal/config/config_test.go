package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	assert.True(t, GetEditable())
	assert.Equal(t, "viewer", GetGrammar())
	assert.False(t, GetPreserveMeta())
	assert.Equal(t, "dracula", GetHighlightStyle())
	assert.True(t, GetAutosave())
	assert.Equal(t, 800*time.Millisecond, GetAutosaveDelay())
	assert.True(t, GetWatch())
	assert.Equal(t, "print", GetOutput())
	assert.Equal(t, "info", GetLogLevel())
	assert.Equal(t, "quizmd.log", filepath.Base(GetLogFile()))
	assert.Equal(t, "42", GetColorCorrect())
	assert.Equal(t, "196", GetColorWrong())
}

func TestInitReadsFileAndEnv(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("QUIZMD_GRAMMAR", "legacy")

	cfg := "editable: false\nautosave_delay: 2s\nhighlight_style: monokai\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizmd.yaml"), []byte(cfg), 0o644))

	require.NoError(t, Init())
	assert.False(t, GetEditable())
	assert.False(t, C.Editable)
	assert.Equal(t, 2*time.Second, GetAutosaveDelay())
	assert.Equal(t, "monokai", C.HighlightStyle)
	assert.Equal(t, "legacy", GetGrammar())
	assert.Equal(t, "quizmd.yaml", filepath.Base(ConfigFile()))
}

func TestAutosaveDelayFallback(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("autosave_delay", "0s")
	assert.Equal(t, 800*time.Millisecond, GetAutosaveDelay())
}

func TestSetters(t *testing.T) {
	viper.Reset()
	SetDefaults()

	SetEditable(false)
	SetGrammar("legacy")
	SetOutput("copy")
	SetLogLevel("debug")
	SetPath("~/notes/go.md")

	assert.False(t, GetEditable())
	assert.Equal(t, "legacy", GetGrammar())
	assert.Equal(t, "copy", GetOutput())
	assert.Equal(t, "debug", GetLogLevel())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes/go.md"), GetPath())
}
