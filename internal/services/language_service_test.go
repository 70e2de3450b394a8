package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/bannerworks/alertbanner/pkg/errors"

	"github.com/bannerworks/alertbanner/internal/database/testutil"
)

func newTestLanguageService(t *testing.T) *LanguageService {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
	svc, err := NewLanguageService(db)
	require.NoError(t, err)
	return svc
}

func TestLanguageServiceList(t *testing.T) {
	svc := newTestLanguageService(t)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for i := 1; i < len(items); i++ {
		require.LessOrEqual(t, items[i-1].Code, items[i].Code, "list is ordered by code")
	}
}

func TestLanguageServiceProvisionedColumns(t *testing.T) {
	svc := newTestLanguageService(t)
	ctx := context.Background()

	provisioned, err := svc.ProvisionedColumns(ctx)
	require.NoError(t, err)
	require.Contains(t, provisioned, "en-us", "the tenant default is always provisioned")
	require.NotContains(t, provisioned, "fr-fr")
}

func TestLanguageServiceEnsureProvisioned(t *testing.T) {
	svc := newTestLanguageService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureProvisioned(ctx, nil))
	require.NoError(t, svc.EnsureProvisioned(ctx, []string{"en-us"}))
	require.NoError(t, svc.EnsureProvisioned(ctx, []string{"EN-US"}), "locale match is case-insensitive")

	err := svc.EnsureProvisioned(ctx, []string{"en-us", "fr-fr"})
	require.ErrorIs(t, err, apperrors.ErrLanguageNotProvisioned)
}

func TestLanguageServiceMarkProvisioned(t *testing.T) {
	svc := newTestLanguageService(t)
	ctx := context.Background()

	dto, err := svc.MarkProvisioned(ctx, "fr-FR")
	require.NoError(t, err)
	require.Equal(t, "fr-fr", dto.Code)
	require.True(t, dto.ColumnExists)

	require.NoError(t, svc.EnsureProvisioned(ctx, []string{"fr-fr"}))

	_, err = svc.MarkProvisioned(ctx, "xx-xx")
	require.ErrorIs(t, err, ErrLanguageNotFound)
}
