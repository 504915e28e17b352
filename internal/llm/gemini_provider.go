package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements generation using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎨 GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", "gemini")

	// Build Gemini-specific request
	contents, err := p.buildGeminiContents(request.InputArray)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("failed to build Gemini contents: %w", err)
	}

	// Configure generation with structured output
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}

	// Gemini does not accept arbitrary JSON-schema maps; ask for JSON output
	// and describe the shape through a genai.Schema instead.
	if request.OutputSchema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = proposalGeminiSchema()
	}

	// Call Gemini API
	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	// Process response
	response, err := p.processGeminiResponse(result, startTime, transaction)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	return response, nil
}

// buildGeminiContents converts our input array to Gemini Content format
func (p *GeminiProvider) buildGeminiContents(inputArray []map[string]any) ([]*genai.Content, error) {
	var contents []*genai.Content

	for _, item := range inputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		// Convert role to Gemini format
		geminiRole := geminiUserRole // Gemini uses "user" and "model"
		if role == "developer" || role == "system" {
			geminiRole = geminiUserRole // System messages go as user in Gemini
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{{Text: content}},
		})
	}

	return contents, nil
}

// proposalGeminiSchema describes the grading proposal bundle in Gemini's
// native schema type. Kept in sync with GetGradingProposalSchema.
func proposalGeminiSchema() *genai.Schema {
	number := &genai.Schema{Type: genai.TypeNumber}

	adjustments := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"local_exposure":    number,
			"local_contrast":    number,
			"local_highlights":  number,
			"local_shadows":     number,
			"local_clarity":     number,
			"local_saturation":  number,
			"local_temperature": number,
			"local_tint":        number,
			"local_sharpness":   number,
			"local_dehaze":      number,
		},
	}

	maskOp := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"op":            {Type: genai.TypeString, Enum: []string{"add", "update", "remove", "remove_all", "clear"}},
			"id":            {Type: genai.TypeString},
			"name":          {Type: genai.TypeString},
			"type":          {Type: genai.TypeString, Enum: maskTypeEnum()},
			"subCategoryId": {Type: genai.TypeInteger},
			"referenceX":    number,
			"referenceY":    number,
			"startX":        number,
			"startY":        number,
			"endX":          number,
			"endY":          number,
			"radius":        number,
			"angle":         number,
			"feather":       number,
			"rangeMin":      number,
			"rangeMax":      number,
			"invert":        {Type: genai.TypeBoolean},
			"adjustments":   adjustments,
		},
		Required: []string{"op"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"style": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"contrast":   number,
					"vibrance":   number,
					"saturation": number,
				},
			},
			"global": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"exposure":    number,
					"contrast":    number,
					"highlights":  number,
					"shadows":     number,
					"whites":      number,
					"blacks":      number,
					"clarity":     number,
					"vibrance":    number,
					"saturation":  number,
					"temperature": number,
					"tint":        number,
				},
			},
			"maskOps": {
				Type:  genai.TypeArray,
				Items: maskOp,
			},
			"name":        {Type: genai.TypeString},
			"prompt":      {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"maskOps"},
	}
}

// processGeminiResponse converts Gemini response to our GenerationResponse
func (p *GeminiProvider) processGeminiResponse(
	result *genai.GenerateContentResponse,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response")
	defer span.Finish()

	// Extract text from Gemini response
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := result.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	textOutput := candidate.Content.Parts[0].Text
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))

	if textOutput == "" {
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	var usage TokenUsage
	if result.UsageMetadata != nil {
		usage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	}

	totalDuration := time.Since(startTime)
	log.Printf("✅ GEMINI GENERATION COMPLETED in %v", totalDuration)

	return &GenerationResponse{
		RawOutput: textOutput,
		Usage:     usage,
	}, nil
}
