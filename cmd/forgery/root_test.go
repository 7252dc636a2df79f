package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRequiresSevenArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"in.jar", "out.jar"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 7 arg(s)")
}

func TestRootEnvDefaults(t *testing.T) {
	t.Setenv(envConfig, "forgery.yaml")
	t.Setenv(envVerbose, "true")

	cmd := newRootCmd()

	cfg, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "forgery.yaml", cfg)

	verbose, err := cmd.Flags().GetBool("verbose")
	require.NoError(t, err)
	assert.True(t, verbose)
}

func TestInputsOrder(t *testing.T) {
	in := inputs([]string{"a.jar", "b.jar", "i.tiny", "j.tsrg", "rt.jar", "mc.jar", "com.example.rt"})

	assert.Equal(t, "a.jar", in.Module)
	assert.Equal(t, "b.jar", in.Output)
	assert.Equal(t, "i.tiny", in.Intermediary)
	assert.Equal(t, "j.tsrg", in.Target)
	assert.Equal(t, "rt.jar", in.Runtime)
	assert.Equal(t, []string{"mc.jar"}, in.Classpath)
	assert.Equal(t, "com.example.rt", in.Package)
}

func TestRunMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir() + "/none.yaml", "a", "b", "c", "d", "e", "f", "g"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
