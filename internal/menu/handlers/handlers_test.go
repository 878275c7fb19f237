package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teka/internal/domain"
)

func TestGroupByCategory(t *testing.T) {
	item := func(name string, cat domain.MenuCategory) domain.MenuItem {
		return domain.MenuItem{
			ID: uuid.New(), Name: name, Category: cat,
			Price: decimal.RequireFromString("9.00"),
		}
	}

	// Category-sorted, as the repository returns it.
	grouped := groupByCategory([]domain.MenuItem{
		item("Samsa", domain.CategoryAppetizer),
		item("Beshbarmak", domain.CategoryMainCourse),
		item("Plov", domain.CategoryMainCourse),
		item("Baursak", domain.CategoryDessert),
	})

	require.Len(t, grouped, 3)
	assert.Equal(t, "appetizer", grouped[0].Category)
	require.Len(t, grouped[0].Items, 1)
	assert.Equal(t, "Samsa", grouped[0].Items[0].Name)

	assert.Equal(t, "main_course", grouped[1].Category)
	require.Len(t, grouped[1].Items, 2)
	assert.Equal(t, "Beshbarmak", grouped[1].Items[0].Name)
	assert.Equal(t, "Plov", grouped[1].Items[1].Name)

	assert.Equal(t, "dessert", grouped[2].Category)
	require.Len(t, grouped[2].Items, 1)
}

func TestGroupByCategoryEmpty(t *testing.T) {
	assert.Empty(t, groupByCategory(nil))
}
