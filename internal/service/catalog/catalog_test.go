package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroCast/internal/domain/models"
)

func TestResolveKnownAlias(t *testing.T) {
	s, err := New().Resolve("  SELIC ")
	require.NoError(t, err)
	assert.Equal(t, "selic", s.Alias)
	assert.Equal(t, 432, s.ProviderCode)
	assert.Equal(t, "SELIC meta anual (%)", s.Description)
}

func TestResolveNumericCode(t *testing.T) {
	s, err := New().Resolve("999")
	require.NoError(t, err)
	assert.Equal(t, 999, s.ProviderCode)
	assert.Equal(t, "999", s.Alias)
	assert.Equal(t, "Série SGS 999", s.Description)
}

func TestResolveErrors(t *testing.T) {
	_, err := New().Resolve("")
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = New().Resolve("   ")
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = New().Resolve("??")
	assert.True(t, errors.Is(err, models.ErrUnknownSeries))

	_, err = New().Resolve("12a")
	assert.True(t, errors.Is(err, models.ErrUnknownSeries))
}

func TestList(t *testing.T) {
	list := New().List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"ipca", "pib", "selic"}, []string{list[0].Alias, list[1].Alias, list[2].Alias})
}
