package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/encbench/internal/source"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.NotNil(t, validateCmd)
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
	assert.Contains(t, validateCmd.Short, "Validate")
	assert.NotNil(t, validateCmd.RunE)
}

func TestValidateCommandChecks(t *testing.T) {
	doc := validateCmd.Long
	assert.Contains(t, doc, "Checks performed")
	assert.Contains(t, doc, "Source database connectivity")
	assert.Contains(t, doc, "encbench validate")

	nosql, err := validateCmd.Flags().GetBool("nosql")
	require.NoError(t, err)
	assert.False(t, nosql)
}

func TestRunValidate(t *testing.T) {
	env := newTestEnv(t, 4, "2, 4", "")

	require.NoError(t, runValidate(validateCmd, nil))

	out := env.out.String()
	assert.Contains(t, out, "Batch sizes: 2, 4")
	assert.Contains(t, out, "Source records: 4 available in Patients, largest batch needs 4")
	assert.Contains(t, out, "Validation Complete")
}

func TestRunValidateInsufficientRecords(t *testing.T) {
	env := newTestEnv(t, 3, "2, 4", "")

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrInsufficientRecords)
	assert.Contains(t, env.out.String(), "❌ Source records")
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestRunValidateNoSQL(t *testing.T) {
	env := newTestEnv(t, 2, "2", "nosql:\n  timeout_seconds: -1\n")

	original := validateNoSQL
	defer func() { validateNoSQL = original }()
	validateNoSQL = true

	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, env.out.String(), "❌ Document store settings")
	assert.Equal(t, exitConfig, exitCode(err))
}
