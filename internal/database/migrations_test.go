package database_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bannerworks/alertbanner/internal/database"
	"github.com/bannerworks/alertbanner/internal/database/testutil"
	"github.com/bannerworks/alertbanner/internal/models"
)

func TestAutoMigrateAndSeed(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	var count int64
	require.NoError(t, db.Model(&models.SupportedLanguage{}).Count(&count).Error)
	require.Greater(t, count, int64(5))

	var tenantDefault models.SupportedLanguage
	require.NoError(t, db.First(&tenantDefault, "code = ?", "en-us").Error)
	require.True(t, tenantDefault.ColumnExists)
	require.True(t, tenantDefault.IsSupported)
}

func TestSeedPreservesProvisioningFlags(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	require.NoError(t, db.Model(&models.SupportedLanguage{}).
		Where("code = ?", "fr-fr").
		Update("column_exists", true).Error)

	// Re-running the seed must not reset locally provisioned columns.
	require.NoError(t, database.SeedLanguages(db))

	var language models.SupportedLanguage
	require.NoError(t, db.First(&language, "code = ?", "fr-fr").Error)
	require.True(t, language.ColumnExists)
}
