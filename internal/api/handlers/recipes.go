package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/middleware"
	"github.com/lumen-studio/lumen-api/internal/services"
)

type RecipeHandler struct {
	recipes  *services.RecipeService
	sessions *services.SessionRegistry
}

func NewRecipeHandler(recipes *services.RecipeService, sessions *services.SessionRegistry) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		sessions: sessions,
	}
}

type CreateRecipeRequest struct {
	Name     string                   `json:"name" binding:"required"`
	Prompt   string                   `json:"prompt"`
	Settings grading.AdjustmentRecord `json:"settings" binding:"required"`
}

// CreateRecipe persists a new recipe from an analyzed photo
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	recipe, err := h.recipes.Create(userID, req.Name, req.Prompt, req.Settings)
	if err != nil {
		log.Printf("❌ CreateRecipe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	log.Printf("✅ CreateRecipe: recipe %d created for user %d (%d masks)",
		recipe.ID, userID, len(req.Settings.Masks))

	c.JSON(http.StatusCreated, gin.H{
		"recipe":     recipe,
		"request_id": c.GetString("request_id"),
	})
}

// GetRecipe returns one recipe scoped to its owner
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	recipeID, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(userID, recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// ListRecipes returns the user's recipes, newest first
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	recipes, err := h.recipes.List(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// parseRecipeID extracts the :id path parameter
func parseRecipeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
