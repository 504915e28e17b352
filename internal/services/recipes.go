package services

import (
	"context"
	"fmt"

	"github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/models"
	"gorm.io/gorm"
)

// RecipeService is the persistence collaborator for recipes. It
// implements grading.Store: accepted modifications land in exactly one
// record-level write.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// Create persists a new recipe for a user.
func (s *RecipeService) Create(userID uint, name, prompt string, settings grading.AdjustmentRecord) (*models.Recipe, error) {
	recipe := &models.Recipe{
		UserID:   userID,
		Name:     name,
		Prompt:   prompt,
		Settings: settings,
	}
	if err := s.db.Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// Get fetches one recipe scoped to its owner.
func (s *RecipeService) Get(userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.Where("id = ? AND user_id = ?", recipeID, userID).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns a user's recipes, newest first.
func (s *RecipeService) List(userID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	query := s.db.Where("user_id = ?", userID).Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// UpdateRecord applies the accept-time update set in one transaction:
// either every field lands or none does. Nil fields are untouched.
func (s *RecipeService) UpdateRecord(ctx context.Context, recipeID uint, update grading.RecipeUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			return fmt.Errorf("recipe %d not found: %w", recipeID, err)
		}

		if update.Name != nil {
			recipe.Name = *update.Name
		}
		if update.Prompt != nil {
			recipe.Prompt = *update.Prompt
		}
		if update.Description != nil {
			recipe.Description = *update.Description
		}
		if update.StyleOverride != nil {
			recipe.StyleOverride = update.StyleOverride
		}
		if update.GlobalOverride != nil {
			recipe.GlobalOverride = update.GlobalOverride
		}
		if update.MaskOverrides != nil {
			recipe.MaskOverrides = update.MaskOverrides
		}
		if update.PresetText != nil {
			recipe.PresetText = *update.PresetText
		}

		return tx.Save(&recipe).Error
	})
}

// LogProposal records a propose/accept/reject event.
func (s *RecipeService) LogProposal(log *models.ProposalLog) error {
	return s.db.Create(log).Error
}
