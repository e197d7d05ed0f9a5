package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
)

func TestCatalog_GetAndList(t *testing.T) {
	kg := *NewBaseUnit("KG", "Kilogram", "kg")
	l := *NewBaseUnit("L", "Liter", "l")
	gone := *NewBaseUnit("OZ", "Ounce", "oz")
	gone.MarkDeleted()

	c := NewCatalog([]BaseUnit{l, kg, gone})

	got, err := c.Get(kg.ID)
	require.NoError(t, err)
	assert.Equal(t, "kg", got.Symbol)

	_, err = c.Get(gone.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = c.Get(id.New())
	assert.True(t, apperror.IsNotFound(err))

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Kilogram", list[0].Name)
	assert.Equal(t, "Liter", list[1].Name)
}

func TestBaseUnit_Validate(t *testing.T) {
	u := NewBaseUnit("KG", "Kilogram", "")
	err := u.Validate(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "symbol", appErr.Details["field"])

	u.Symbol = "kg"
	assert.NoError(t, u.Validate(context.Background()))
}
