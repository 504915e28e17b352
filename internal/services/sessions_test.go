package services

import (
	"context"
	"testing"

	"github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRecipeSource struct {
	recipes map[uint]*models.Recipe
	loads   int
}

func (f *fakeRecipeSource) Get(userID, recipeID uint) (*models.Recipe, error) {
	f.loads++
	recipe, ok := f.recipes[recipeID]
	if !ok || recipe.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return recipe, nil
}

func (f *fakeRecipeSource) UpdateRecord(_ context.Context, _ uint, _ grading.RecipeUpdate) error {
	return nil
}

func testRegistry(recipes map[uint]*models.Recipe) (*SessionRegistry, *fakeRecipeSource) {
	source := &fakeRecipeSource{recipes: recipes}
	return newSessionRegistry(source, NewPresetService()), source
}

func TestSessionRegistry_GetCachesPerRecipe(t *testing.T) {
	registry, source := testRegistry(map[uint]*models.Recipe{
		7: {ID: 7, UserID: 1, Name: "Dusk"},
	})

	first, err := registry.Get(1, 7)
	require.NoError(t, err)
	second, err := registry.Get(1, 7)
	require.NoError(t, err)

	assert.Same(t, first, second, "repeat access returns the live session")
	assert.Equal(t, 1, source.loads, "snapshot is loaded once")
}

func TestSessionRegistry_CachedSessionStaysOwnerScoped(t *testing.T) {
	registry, _ := testRegistry(map[uint]*models.Recipe{
		7: {ID: 7, UserID: 1, Name: "Dusk"},
	})

	_, err := registry.Get(1, 7)
	require.NoError(t, err)

	// Another user hitting the cached entry gets the same not-found an
	// owner-scoped load would produce.
	_, err = registry.Get(2, 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	session, err := registry.Get(1, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), session.RecipeID())
}

func TestSessionRegistry_GetRejectsForeignRecipe(t *testing.T) {
	registry, _ := testRegistry(map[uint]*models.Recipe{
		7: {ID: 7, UserID: 1, Name: "Dusk"},
	})

	_, err := registry.Get(2, 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRegistry_DropReloadsPersistedState(t *testing.T) {
	registry, source := testRegistry(map[uint]*models.Recipe{
		7: {ID: 7, UserID: 1, Name: "Dusk"},
	})

	first, err := registry.Get(1, 7)
	require.NoError(t, err)

	registry.Drop(7)

	second, err := registry.Get(1, 7)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "eviction forces a fresh snapshot")
	assert.Equal(t, 2, source.loads)
}
