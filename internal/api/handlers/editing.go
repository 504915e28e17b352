package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	gradingagent "github.com/lumen-studio/lumen-api/internal/agents/grading"
	"github.com/lumen-studio/lumen-api/internal/config"
	"github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/lumen-studio/lumen-api/internal/logger"
	"github.com/lumen-studio/lumen-api/internal/metrics"
	"github.com/lumen-studio/lumen-api/internal/middleware"
	"github.com/lumen-studio/lumen-api/internal/models"
	"github.com/lumen-studio/lumen-api/internal/observability"
	"github.com/lumen-studio/lumen-api/internal/services"
)

// EditHandler owns the propose/preview/accept/reject/export lifecycle
// for recipe editing sessions.
type EditHandler struct {
	agent    *gradingagent.GradingAgent
	sessions *services.SessionRegistry
	recipes  *services.RecipeService
	credits  *services.CreditsService
	presets  *services.PresetService

	cwMetrics     *metrics.Client
	sentryMetrics *metrics.SentryMetrics
	cfg           *config.Config
}

func NewEditHandler(
	cfg *config.Config,
	sessions *services.SessionRegistry,
	recipes *services.RecipeService,
	credits *services.CreditsService,
	presets *services.PresetService,
	cwMetrics *metrics.Client,
) (*EditHandler, error) {
	agent, err := gradingagent.NewGradingAgent(cfg.OpenAIAPIKey, cfg.GeminiAPIKey, cfg.ProposerModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize grading agent: %w", err)
	}

	return &EditHandler{
		agent:         agent,
		sessions:      sessions,
		recipes:       recipes,
		credits:       credits,
		presets:       presets,
		cwMetrics:     cwMetrics,
		sentryMetrics: metrics.NewSentryMetrics(),
		cfg:           cfg,
	}, nil
}

type ProposeRequest struct {
	Request  string `json:"request" binding:"required"`
	Accuracy string `json:"accuracy"` // fast, balanced, deep
	Model    string `json:"model"`
}

type ExportRequest struct {
	IncludeMasks       *bool `json:"include_masks"`
	IncludePointColors *bool `json:"include_point_colors"`
	IncludeGrain       *bool `json:"include_grain"`
}

// Propose runs the proposer against the recipe's current effective
// settings and stages the returned bundle on the edit session.
func (h *EditHandler) Propose(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Propose: PANIC recovered: %v", r)
			log.Printf("   Stack trace:\n%s", string(debug.Stack()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      fmt.Sprintf("Internal server error: %v", r),
				"request_id": c.GetString("request_id"),
			})
		}
	}()

	var req ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Accuracy != "" {
		allowedAccuracy := map[string]bool{
			string(gradingagent.AccuracyFast):     true,
			string(gradingagent.AccuracyBalanced): true,
			string(gradingagent.AccuracyDeep):     true,
		}
		if !allowedAccuracy[req.Accuracy] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accuracy. Allowed: fast, balanced, deep"})
			return
		}
	}

	userID, _ := middleware.GetCurrentUserID(c)

	recipeID, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	session, err := h.sessions.Get(userID, recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	// Soft warning if credits are low (but allow request to proceed)
	_, balance, creditsErr := h.credits.HasSufficientCredits(userID, 1)
	if creditsErr == nil && balance < lowCreditThreshold {
		c.Header("X-Credits-Low", "true")
		c.Header("X-Credits-Balance", fmt.Sprintf("%d", balance))
	}

	log.Printf("📨 Propose: recipe %d, request length %d", recipeID, len(req.Request))

	// Langfuse trace for observability
	lfClient := observability.GetClient()
	trace := lfClient.StartTrace(c.Request.Context(), "grading-propose", map[string]interface{}{
		"recipe_id": recipeID,
		"user_id":   userID,
	})
	defer trace.Finish()

	gen := trace.Generation("proposer", map[string]interface{}{
		"accuracy": req.Accuracy,
	})

	startTime := time.Now()
	result, err := h.agent.Propose(c.Request.Context(), &gradingagent.ProposalRequest{
		Current:     session.Effective(),
		UserRequest: req.Request,
		Accuracy:    gradingagent.Accuracy(req.Accuracy),
		Model:       req.Model,
	})
	duration := time.Since(startTime)

	if err != nil {
		log.Printf("❌ Propose: proposer error: %v", err)
		gen.SetLevel("ERROR")
		gen.Output(err.Error())
		gen.Finish()
		h.cwMetrics.RecordProposalDuration(duration, false)
		h.sentryMetrics.RecordProposalDuration(c.Request.Context(), duration, false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if proposeErr := session.Propose(&result.Pending); proposeErr != nil {
		gen.Finish()
		if errors.Is(proposeErr, grading.ErrAcceptInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "Accept in progress, try again shortly"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": proposeErr.Error()})
		return
	}

	// Record the generation in Langfuse with cost attribution
	rawBundle, _ := json.Marshal(result.Pending)
	gen.LogProposalResponse(result.Model,
		[]map[string]interface{}{{"role": "user", "content": req.Request}},
		string(rawBundle),
		result.Usage,
		map[string]interface{}{
			"recipe_id":     recipeID,
			"mask_op_count": len(result.Pending.MaskOps),
		})
	gen.Finish()

	// Deduct credits and log usage regardless of deduction outcome
	creditsCharged := h.credits.CalculateCredits(int(result.Usage.TotalTokens))
	if deductErr := h.credits.DeductCredits(userID, creditsCharged); deductErr != nil {
		log.Printf("⚠️  Propose: credit deduction failed for user %d: %v", userID, deductErr)
	}

	usageLog := &models.UsageLog{
		UserID:         userID,
		RecipeID:       recipeID,
		Model:          result.Model,
		TotalTokens:    int(result.Usage.TotalTokens),
		InputTokens:    int(result.Usage.InputTokens),
		OutputTokens:   int(result.Usage.OutputTokens),
		CreditsCharged: creditsCharged,
		DurationMS:     int(duration.Milliseconds()),
		RequestID:      c.GetString("request_id"),
	}
	if logErr := h.credits.LogUsage(usageLog); logErr != nil {
		log.Printf("⚠️  Propose: failed to log usage: %v", logErr)
	}

	h.logProposalEvent(c, userID, recipeID, models.ProposalActionProposed, result, req.Request, duration)

	h.cwMetrics.RecordTokenUsage(result.Model,
		int(result.Usage.TotalTokens), int(result.Usage.InputTokens), int(result.Usage.OutputTokens))
	h.cwMetrics.RecordProposalOutcome(models.ProposalActionProposed, len(result.Pending.MaskOps))
	h.cwMetrics.RecordProposalDuration(duration, true)
	h.sentryMetrics.RecordTokenUsage(c.Request.Context(), result.Model,
		int(result.Usage.TotalTokens), int(result.Usage.InputTokens), int(result.Usage.OutputTokens))
	h.sentryMetrics.RecordProposalDuration(c.Request.Context(), duration, true)

	logger.LogProposalRequest(c.Request.Context(), result.Model, duration, map[string]interface{}{
		"total_tokens":  result.Usage.TotalTokens,
		"input_tokens":  result.Usage.InputTokens,
		"output_tokens": result.Usage.OutputTokens,
	}, logger.Fields{
		"recipe_id":     recipeID,
		"mask_op_count": len(result.Pending.MaskOps),
		"request_id":    c.GetString("request_id"),
	})

	log.Printf("✅ Propose: staged bundle for recipe %d (%d mask ops, %d tokens, %v)",
		recipeID, len(result.Pending.MaskOps), result.Usage.TotalTokens, duration)

	c.JSON(http.StatusOK, gin.H{
		"request_id": c.GetString("request_id"),
		"pending":    result.Pending,
		"effective":  session.Effective(),
		"model":      result.Model,
		"usage": gin.H{
			"total_tokens":  result.Usage.TotalTokens,
			"input_tokens":  result.Usage.InputTokens,
			"output_tokens": result.Usage.OutputTokens,
		},
		"credits_charged": creditsCharged,
	})
}

// Preview returns the current effective record, composed with the staged
// bundle when one exists. Read-only: persisted state is never touched.
func (h *EditHandler) Preview(c *gin.Context) {
	session, ok := h.getSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":       session.State(),
		"has_pending": session.HasPending(),
		"pending":     session.Pending(),
		"effective":   session.Effective(),
	})
}

// Accept merges the staged bundle into the accepted tiers with one
// atomic persistence write.
func (h *EditHandler) Accept(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	recipeID, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	session, err := h.sessions.Get(userID, recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	maskOpCount := 0
	if pending := session.Pending(); pending != nil {
		maskOpCount = len(pending.MaskOps)
	}

	if acceptErr := session.Accept(c.Request.Context()); acceptErr != nil {
		if errors.Is(acceptErr, grading.ErrNothingPending) {
			c.JSON(http.StatusConflict, gin.H{"error": "No pending modification to accept"})
			return
		}
		log.Printf("❌ Accept: recipe %d: %v", recipeID, acceptErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": acceptErr.Error()})
		return
	}

	h.logProposalEvent(c, userID, recipeID, models.ProposalActionAccepted, nil, "", 0)
	h.cwMetrics.RecordProposalOutcome(models.ProposalActionAccepted, maskOpCount)

	log.Printf("✅ Accept: recipe %d committed (%d mask ops)", recipeID, maskOpCount)

	c.JSON(http.StatusOK, gin.H{
		"request_id": c.GetString("request_id"),
		"state":      session.State(),
		"effective":  session.Effective(),
	})
}

// Reject discards the staged bundle; the effective record reverts to its
// pre-proposal value.
func (h *EditHandler) Reject(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	recipeID, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	session, err := h.sessions.Get(userID, recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	if !session.HasPending() {
		c.JSON(http.StatusConflict, gin.H{"error": "No pending modification to reject"})
		return
	}

	maskOpCount := len(session.Pending().MaskOps)
	session.Reject()

	h.logProposalEvent(c, userID, recipeID, models.ProposalActionRejected, nil, "", 0)
	h.cwMetrics.RecordProposalOutcome(models.ProposalActionRejected, maskOpCount)

	log.Printf("🧹 Reject: recipe %d reverted (%d mask ops discarded)", recipeID, maskOpCount)

	c.JSON(http.StatusOK, gin.H{
		"request_id": c.GetString("request_id"),
		"state":      session.State(),
		"effective":  session.Effective(),
	})
}

// Export renders the effective record as preset text. Section flags
// default to everything included.
func (h *EditHandler) Export(c *gin.Context) {
	session, ok := h.getSession(c)
	if !ok {
		return
	}

	flags := grading.DefaultExportFlags()
	if c.Request.ContentLength > 0 {
		var req ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.IncludeMasks != nil {
			flags.IncludeMasks = *req.IncludeMasks
		}
		if req.IncludePointColors != nil {
			flags.IncludePointColors = *req.IncludePointColors
		}
		if req.IncludeGrain != nil {
			flags.IncludeGrain = *req.IncludeGrain
		}
	}

	presetText, err := h.presets.Render(session.Effective(), flags)
	if err != nil {
		log.Printf("❌ Export: render failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": c.GetString("request_id"),
		"preset":     presetText,
		"flags":      flags,
	})
}

// getSession resolves the :id parameter to a live edit session, writing
// the error response itself on failure.
func (h *EditHandler) getSession(c *gin.Context) (*grading.EditSession, bool) {
	userID, _ := middleware.GetCurrentUserID(c)

	recipeID, err := parseRecipeID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return nil, false
	}

	session, err := h.sessions.Get(userID, recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return nil, false
	}
	return session, true
}

// logProposalEvent records a lifecycle event; result is nil for
// accept/reject events.
func (h *EditHandler) logProposalEvent(
	c *gin.Context,
	userID, recipeID uint,
	action string,
	result *gradingagent.ProposalResult,
	prompt string,
	duration time.Duration,
) {
	entry := &models.ProposalLog{
		RecipeID:  recipeID,
		UserID:    userID,
		Action:    action,
		RequestID: c.GetString("request_id"),
	}
	if result != nil {
		entry.Prompt = prompt
		entry.Model = result.Model
		entry.MaskOpCount = len(result.Pending.MaskOps)
		entry.TotalTokens = int(result.Usage.TotalTokens)
		entry.InputTokens = int(result.Usage.InputTokens)
		entry.OutputTokens = int(result.Usage.OutputTokens)
		entry.DurationMS = int(duration.Milliseconds())
	}
	if err := h.recipes.LogProposal(entry); err != nil {
		log.Printf("⚠️  Failed to log proposal event (%s): %v", action, err)
	}
}
