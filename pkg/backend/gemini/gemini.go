// Package gemini implements the generation backend on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.0-flash-preview-image-generation"
)

var ErrMissingAPIKey = errors.New("gemini API key is required")

// generator is the part of the genai client the backend calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config selects the models used for each kind of request.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// Backend sends generation requests to Gemini.
type Backend struct {
	models     generator
	textModel  string
	imageModel string
	logger     *slog.Logger
}

// New creates a Gemini backend.
func New(ctx context.Context, config Config, logger *slog.Logger) (*Backend, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newBackend(client.Models, config, logger), nil
}

func newBackend(models generator, config Config, logger *slog.Logger) *Backend {
	if config.TextModel == "" {
		config.TextModel = DefaultTextModel
	}

	if config.ImageModel == "" {
		config.ImageModel = DefaultImageModel
	}

	return &Backend{
		models:     models,
		textModel:  config.TextModel,
		imageModel: config.ImageModel,
		logger:     logger.With("module", "gemini_backend"),
	}
}

func (b *Backend) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	model, config := b.prepare(req)

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(otelhelper.BackendKey, "gemini"),
		attribute.String(otelhelper.ModelKey, model),
		attribute.Bool(otelhelper.StructuredKey, req.Structured()),
	)

	b.logger.DebugContext(ctx, "generating content", "flow", req.Flow, "model", model, "structured", req.Structured())

	result, err := b.models.GenerateContent(ctx, model, contents(req), config)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	return b.response(req, result)
}

func (b *Backend) prepare(req *models.GenerationRequest) (string, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}

	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if req.WantsMedia() {
		config.ResponseModalities = []string{"TEXT", "IMAGE"}

		return b.imageModel, config
	}

	if req.Structured() {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = Schema(req.OutputShape)
	}

	return b.textModel, config
}

func contents(req *models.GenerationRequest) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}

	for _, media := range req.Media {
		if media.Inline() {
			parts = append(parts, genai.NewPartFromBytes(media.Data, media.MIMEType))
		} else {
			parts = append(parts, genai.NewPartFromURI(media.URI, media.MIMEType))
		}
	}

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func (b *Backend) response(req *models.GenerationRequest, result *genai.GenerateContentResponse) (*models.GenerationResponse, error) {
	if result == nil {
		return nil, models.NewGenerationFailed(models.ReasonEmptyResponse, "backend returned no response", nil)
	}

	if feedback := result.PromptFeedback; feedback != nil && feedback.BlockReason != "" {
		message := fmt.Sprintf("prompt blocked: %s", feedback.BlockReason)
		if feedback.BlockReasonMessage != "" {
			message += ": " + feedback.BlockReasonMessage
		}

		return nil, models.NewContentFiltered(message, nil)
	}

	if len(result.Candidates) == 0 || result.Candidates[0] == nil {
		return nil, models.NewGenerationFailed(models.ReasonEmptyResponse, "backend returned no candidates", nil)
	}

	candidate := result.Candidates[0]
	finish := string(candidate.FinishReason)

	if filteredFinish(candidate.FinishReason) {
		return nil, models.NewContentFiltered(fmt.Sprintf("generation stopped: %s", finish), nil)
	}

	resp := &models.GenerationResponse{FinishReason: finish}

	var text strings.Builder

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			switch {
			case part == nil || part.Thought:
			case part.InlineData != nil && len(part.InlineData.Data) > 0:
				resp.Media = append(resp.Media, models.MediaPart{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data})
			case part.FileData != nil && part.FileData.FileURI != "":
				resp.Media = append(resp.Media, models.MediaPart{MIMEType: part.FileData.MIMEType, URI: part.FileData.FileURI})
			default:
				text.WriteString(part.Text)
			}
		}
	}

	resp.Text = text.String()

	if req.Structured() && json.Valid([]byte(strings.TrimSpace(resp.Text))) {
		resp.Data = json.RawMessage(strings.TrimSpace(resp.Text))
	}

	if resp.Empty() {
		return nil, models.NewGenerationFailed(
			models.ReasonEmptyResponse,
			fmt.Sprintf("backend returned no content (finish reason %q)", finish),
			nil,
		)
	}

	return resp, nil
}

func filteredFinish(reason genai.FinishReason) bool {
	switch reason {
	case genai.FinishReasonSafety,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII,
		genai.FinishReasonRecitation:
		return true
	}

	return reason == "IMAGE_SAFETY"
}

func classifyError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewGenerationFailed(models.ReasonTimeout, "backend call timed out", err)
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return models.NewGenerationFailed(models.ReasonCancelled, "backend call cancelled", err)
	}

	if code, ok := apiErrorCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests:
			return models.NewGenerationFailed(models.ReasonQuota, "backend quota exhausted", err)
		case code == http.StatusGatewayTimeout || code == http.StatusRequestTimeout:
			return models.NewGenerationFailed(models.ReasonTimeout, "backend timed out", err)
		}
	}

	return models.NewGenerationFailed(models.ReasonBackend, "backend call failed", err)
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}

	return 0, false
}
