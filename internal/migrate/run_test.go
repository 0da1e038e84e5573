package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedVersions(t *testing.T) {
	versions, err := embeddedVersions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_two_factor", versions[0])
	assert.IsNonDecreasing(t, versions)
}

func TestEmbeddedSchemaDefinesTables(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/0001_two_factor.sql")
	require.NoError(t, err)
	sql := string(raw)
	for _, table := range []string{"users", "organizations", "organization_users"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestEmbeddedSchemaTracksMembershipStatus(t *testing.T) {
	versions, err := embeddedVersions()
	require.NoError(t, err)
	assert.Contains(t, versions, "0002_membership_status")

	raw, err := migrationsFS.ReadFile("migrations/0002_membership_status.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CHECK (status IN ('invited', 'accepted', 'confirmed'))")
	assert.Contains(t, string(raw), "SET DEFAULT 'invited'")
}

