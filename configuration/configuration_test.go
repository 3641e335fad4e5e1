package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDuplicateStatementIDRejected(t *testing.T) {
	cfg := New()
	ms := &MappedStatement{ID: "Users.find", Namespace: "Users", Kind: Select}
	require.NoError(t, cfg.AddStatement(ms))
	err := cfg.AddStatement(ms)
	require.Error(t, err)
}

func TestResultMapExtendsMerge(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.AddResultMap(&ResultMap{
		ID:         "Base",
		ResultMappings: []ResultMapping{{Property: "Name", Column: "name"}},
	}))
	require.NoError(t, cfg.AddResultMap(&ResultMap{
		ID:         "Child",
		ExtendsID:  "Base",
		ResultMappings: []ResultMapping{{Property: "Age", Column: "age"}},
	}))
	rm, ok := cfg.ResultMap("Child")
	require.True(t, ok)
	require.Len(t, rm.ResultMappings, 2)
}

func TestDefaultEnvironmentRequired(t *testing.T) {
	cfg := New()
	_, err := cfg.DefaultEnvironment()
	require.Error(t, err)
}

func TestLoadSettingsYAML(t *testing.T) {
	cfg := New()
	err := cfg.LoadSettingsYAML([]byte("cacheEnabled: false\nmapUnderscoreToCamelCase: true\ndefaultExecutorType: BATCH\n"))
	require.NoError(t, err)
	require.False(t, cfg.Settings.CacheEnabled)
	require.True(t, cfg.Settings.MapUnderscoreToCamelCase)
	require.Equal(t, Batch, cfg.Settings.DefaultExecutorType)
}
