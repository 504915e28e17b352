package services

import (
	"sync"

	"github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/models"
	"gorm.io/gorm"
)

// recipeSource loads owner-scoped recipes and persists accepted
// modifications. *RecipeService satisfies it.
type recipeSource interface {
	Get(userID, recipeID uint) (*models.Recipe, error)
	grading.Store
}

// sessionEntry pins the owner the session was loaded for so cached
// lookups stay owner-scoped.
type sessionEntry struct {
	owner   uint
	session *grading.EditSession
}

// SessionRegistry hands out the per-recipe edit session. The mutex only
// guards the map; session lifecycle calls synchronize on the session
// itself, so separate recipes can be edited concurrently without
// cross-talk.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uint]sessionEntry

	recipes  recipeSource
	pipeline *grading.Pipeline
	renderer grading.Renderer
}

func NewSessionRegistry(recipes *RecipeService, renderer grading.Renderer) *SessionRegistry {
	return newSessionRegistry(recipes, renderer)
}

func newSessionRegistry(recipes recipeSource, renderer grading.Renderer) *SessionRegistry {
	engine := grading.NewEngine(grading.NewCompositeIdentity())
	return &SessionRegistry{
		sessions: make(map[uint]sessionEntry),
		recipes:  recipes,
		pipeline: grading.NewPipeline(engine),
		renderer: renderer,
	}
}

// Get returns the live session for a recipe, creating one from the
// persisted snapshot on first access. Cached sessions are handed out
// only to the owner they were loaded for; anyone else gets the same
// not-found error an owner-scoped load would produce.
func (r *SessionRegistry) Get(userID, recipeID uint) (*grading.EditSession, error) {
	r.mu.Lock()
	if entry, ok := r.sessions[recipeID]; ok {
		r.mu.Unlock()
		if entry.owner != userID {
			return nil, gorm.ErrRecordNotFound
		}
		return entry.session, nil
	}
	r.mu.Unlock()

	recipe, err := r.recipes.Get(userID, recipeID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// The load above already proved ownership, so a racing insert for the
	// same recipe carries the same owner.
	if entry, ok := r.sessions[recipeID]; ok {
		return entry.session, nil
	}
	session := grading.NewEditSession(recipe.Snapshot(), r.pipeline, r.recipes, r.renderer)
	r.sessions[recipeID] = sessionEntry{owner: recipe.UserID, session: session}
	return session, nil
}

// Pipeline exposes the shared composition pipeline for ad-hoc computes.
func (r *SessionRegistry) Pipeline() *grading.Pipeline {
	return r.pipeline
}

// Drop evicts a recipe's session so the next access reloads persisted
// state. Used after out-of-band recipe edits.
func (r *SessionRegistry) Drop(recipeID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, recipeID)
}
