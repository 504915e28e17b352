package models

import (
	"time"

	"github.com/lumen-studio/lumen-api/internal/grading"
	"gorm.io/gorm"
)

// Recipe is a user's color-grading preset: the base adjustment record the
// analysis service proposed, plus the accepted override tiers layered on
// top of it. The pending tier is never persisted; it lives only inside an
// edit session until accept.
type Recipe struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name        string `json:"name"`
	Prompt      string `gorm:"type:text" json:"prompt"`
	Description string `gorm:"type:text" json:"description"`

	// Base record as proposed by the color-analysis service.
	Settings grading.AdjustmentRecord `gorm:"serializer:json;type:jsonb" json:"settings"`

	// Accepted override tiers.
	StyleOverride  *grading.StyleOverride    `gorm:"serializer:json;type:jsonb" json:"style_override,omitempty"`
	GlobalOverride *grading.AdjustmentRecord `gorm:"serializer:json;type:jsonb" json:"global_override,omitempty"`
	MaskOverrides  []grading.MaskOverrideOp  `gorm:"serializer:json;type:jsonb" json:"mask_overrides,omitempty"`

	// Rendered interchange preset, regenerated on every accept.
	PresetText string `gorm:"type:text" json:"preset_text"`
}

// Snapshot converts the persisted recipe into the edit-session starting
// state.
func (r *Recipe) Snapshot() grading.RecipeSnapshot {
	return grading.RecipeSnapshot{
		ID:             r.ID,
		Name:           r.Name,
		Prompt:         r.Prompt,
		Description:    r.Description,
		Base:           &r.Settings,
		StyleOverride:  r.StyleOverride,
		GlobalOverride: r.GlobalOverride,
		MaskOverrides:  r.MaskOverrides,
	}
}

// ProposalLog records one propose/accept/reject event for a recipe,
// kept for history and usage analytics.
type ProposalLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RecipeID uint   `gorm:"not null;index" json:"recipe_id"`
	UserID   uint   `gorm:"index" json:"user_id"`
	Action   string `gorm:"not null;index" json:"action"` // "proposed", "accepted", "rejected"

	Prompt      string `gorm:"type:text" json:"prompt,omitempty"`
	Model       string `json:"model,omitempty"`
	MaskOpCount int    `json:"mask_op_count"`

	TotalTokens  int    `json:"total_tokens"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	DurationMS   int    `json:"duration_ms"`
	RequestID    string `gorm:"index" json:"request_id"`
}

// Proposal actions for ProposalLog.Action.
const (
	ProposalActionProposed = "proposed"
	ProposalActionAccepted = "accepted"
	ProposalActionRejected = "rejected"
)
