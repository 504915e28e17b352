package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Session lifecycle errors.
var (
	ErrNilProposal    = errors.New("proposal bundle is nil")
	ErrNothingPending = errors.New("no pending modification to resolve")
	ErrAcceptInFlight = errors.New("accept in flight; proposal rejected")
)

// SessionState is the lifecycle state of an edit session.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateProposed  SessionState = "proposed"
	StateAccepting SessionState = "accepting"
)

// ExportFlags selects which sections the preset renderer emits.
type ExportFlags struct {
	IncludeMasks       bool `json:"includeMasks"`
	IncludePointColors bool `json:"includePointColors"`
	IncludeGrain       bool `json:"includeGrain"`
}

// DefaultExportFlags includes every section.
func DefaultExportFlags() ExportFlags {
	return ExportFlags{IncludeMasks: true, IncludePointColors: true, IncludeGrain: true}
}

// RecipeUpdate is the single atomic update set written on accept. Nil
// fields are untouched; MaskOverrides carries the full accepted tier
// after appending the bundle's ops.
type RecipeUpdate struct {
	Name           *string
	Prompt         *string
	Description    *string
	StyleOverride  *StyleOverride
	GlobalOverride *AdjustmentRecord
	MaskOverrides  []MaskOverrideOp
	PresetText     *string
}

// Store is the persistence collaborator. UpdateRecord must be atomic at
// the record level: either every field of the update lands or none does.
type Store interface {
	UpdateRecord(ctx context.Context, recipeID uint, update RecipeUpdate) error
}

// Renderer is the preset-export collaborator.
type Renderer interface {
	Render(record *AdjustmentRecord, flags ExportFlags) (string, error)
}

// RecipeSnapshot is the persisted state an edit session starts from.
type RecipeSnapshot struct {
	ID             uint
	Name           string
	Prompt         string
	Description    string
	Base           *AdjustmentRecord
	StyleOverride  *StyleOverride
	GlobalOverride *AdjustmentRecord
	MaskOverrides  []MaskOverrideOp
}

// EditSession owns the propose/preview/accept/reject lifecycle for one
// recipe. Sessions are per-recipe values, not process-wide state, so
// multiple recipes can be edited concurrently without cross-talk. A
// session is safe for concurrent use: the mutex serializes lifecycle
// transitions, and proposals arriving while an accept commit is in
// flight are refused rather than queued behind it.
type EditSession struct {
	mu sync.Mutex

	recipeID uint

	name        string
	prompt      string
	description string

	base     *AdjustmentRecord
	style    *StyleOverride
	global   *AdjustmentRecord
	accepted []MaskOverrideOp

	pending *PendingModification
	state   SessionState

	pipeline *Pipeline
	store    Store
	renderer Renderer
}

// NewEditSession builds a session from a persisted snapshot.
func NewEditSession(snap RecipeSnapshot, pipeline *Pipeline, store Store, renderer Renderer) *EditSession {
	return &EditSession{
		recipeID:    snap.ID,
		name:        snap.Name,
		prompt:      snap.Prompt,
		description: snap.Description,
		base:        snap.Base,
		style:       snap.StyleOverride,
		global:      snap.GlobalOverride,
		accepted:    snap.MaskOverrides,
		state:       StateIdle,
		pipeline:    pipeline,
		store:       store,
		renderer:    renderer,
	}
}

// RecipeID returns the recipe this session edits.
func (s *EditSession) RecipeID() uint { return s.recipeID }

// State returns the current lifecycle state.
func (s *EditSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasPending reports whether a staged modification exists.
func (s *EditSession) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Pending returns the staged bundle, or nil.
func (s *EditSession) Pending() *PendingModification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Effective composes the current effective record. While a modification
// is staged it previews as accepted-plus-proposal; otherwise it is built
// from accepted tiers alone.
func (s *EditSession) Effective() *AdjustmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return s.pipeline.ComputeEffective(s.base, s.style, s.accepted, nil, s.global)
	}
	return s.pipeline.ComputeEffective(
		s.base,
		MergeStyle(s.style, s.pending.StylePatch),
		s.accepted,
		s.pending.MaskOps,
		MergeGlobal(s.global, s.pending.GlobalPatch),
	)
}

// Propose stages a bundle, overwriting any prior unaccepted one — a new
// proposal replaces, never stacks. It touches no persisted state. A
// proposal arriving while an accept is in flight is refused so it cannot
// interleave with the commit.
func (s *EditSession) Propose(bundle *PendingModification) error {
	if bundle == nil {
		return ErrNilProposal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAccepting {
		return ErrAcceptInFlight
	}

	normalizeBundle(bundle)
	s.pending = bundle
	s.state = StateProposed
	return nil
}

// Reject discards the staged bundle. Persisted state is untouched and
// the effective record reverts to its pre-proposal value.
func (s *EditSession) Reject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProposed {
		return
	}
	s.pending = nil
	s.state = StateIdle
}

// Accept merges the staged bundle into the accepted tiers with one
// atomic persistence write and clears the pending state only after the
// write is durable. On any failure the bundle stays staged, unchanged,
// and the error surfaces to the caller for retry.
func (s *EditSession) Accept(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateProposed || s.pending == nil {
		s.mu.Unlock()
		return ErrNothingPending
	}

	s.state = StateAccepting
	bundle := s.pending

	// Mask ops accumulate across accept cycles: append, never replace.
	mergedStyle := MergeStyle(s.style, bundle.StylePatch)
	mergedGlobal := MergeGlobal(s.global, bundle.GlobalPatch)
	mergedOps := append(append([]MaskOverrideOp(nil), s.accepted...), bundle.MaskOps...)

	name := overlayText(s.name, bundle.TextPatch.Name)
	prompt := overlayText(s.prompt, bundle.TextPatch.Prompt)
	description := overlayText(s.description, bundle.TextPatch.Description)
	base := s.base
	s.mu.Unlock()

	// The render and the persistence write run unlocked so previews stay
	// readable mid-commit; the accepting state, not the lock, refuses
	// concurrent proposals so they fail fast instead of queueing behind
	// the write.
	effective := s.pipeline.ComputeEffective(base, mergedStyle, mergedOps, nil, mergedGlobal)
	presetText, err := s.renderer.Render(effective, DefaultExportFlags())
	if err != nil {
		s.reopen()
		return fmt.Errorf("preset render failed: %w", err)
	}

	update := RecipeUpdate{
		Name:           &name,
		Prompt:         &prompt,
		Description:    &description,
		StyleOverride:  mergedStyle,
		GlobalOverride: mergedGlobal,
		MaskOverrides:  mergedOps,
		PresetText:     &presetText,
	}

	if err := s.store.UpdateRecord(ctx, s.recipeID, update); err != nil {
		s.reopen()
		return fmt.Errorf("persist accepted modification: %w", err)
	}

	// The write is durable; fold the bundle into the session tiers.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = mergedStyle
	s.global = mergedGlobal
	s.accepted = mergedOps
	s.name = name
	s.prompt = prompt
	s.description = description
	s.pending = nil
	s.state = StateIdle
	return nil
}

// reopen returns a failed accept to the proposed state so the staged
// bundle survives for retry.
func (s *EditSession) reopen() {
	s.mu.Lock()
	s.state = StateProposed
	s.mu.Unlock()
}

func overlayText(current string, patch *string) string {
	if patch != nil {
		return *patch
	}
	return current
}

// normalizeBundle is the boundary validation for proposer output:
// operation names are canonicalized and local adjustments clamped into
// their bounded range. Malformed ops are kept — the resolver degrades
// gracefully rather than failing the whole bundle.
func normalizeBundle(bundle *PendingModification) {
	for i := range bundle.MaskOps {
		op := &bundle.MaskOps[i]
		op.Op = MaskOp(strings.ToLower(strings.TrimSpace(string(op.Op))))
		clampAdjustments(&op.Adjustments)
	}
}

func clampAdjustments(adj *MaskAdjustments) {
	for _, v := range []*float64{
		adj.Exposure, adj.Contrast, adj.Highlights, adj.Shadows, adj.Clarity,
		adj.Saturation, adj.Temperature, adj.Tint, adj.Sharpness, adj.Dehaze,
	} {
		if v == nil {
			continue
		}
		if *v > 1 {
			*v = 1
		}
		if *v < -1 {
			*v = -1
		}
	}
}
