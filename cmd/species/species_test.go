package species

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	catalogpkg "github.com/bahria/bahria-go/internal/species"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := Command(&conf.Settings{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSpeciesTable(t *testing.T) {
	t.Parallel()

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "poulpe")
	assert.Contains(t, out, "Octopus vulgaris")
}

func TestSpeciesLookupJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "POULPE", "--json")
	require.NoError(t, err)

	var profiles []catalogpkg.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "poulpe", profiles[0].Code)
}

func TestSpeciesUnknownCode(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "thon")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
