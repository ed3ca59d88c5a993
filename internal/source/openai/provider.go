// Package openai provides an alternate tier provider that generates an image
// with the OpenAI Images API when nothing better exists. Generated URLs are
// temporary, so callers that delegate them should expect them to expire.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const providerName = "openai"

// Provider implements domain.ImageProvider for OpenAI image generation.
type Provider struct {
	client     openai.Client
	configured bool
	model      string
	size       string
}

// NewProvider creates a new OpenAI provider. Without an API key the provider
// is built but reports itself unconfigured.
func NewProvider(config Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	model := config.ImageModel
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	size := config.ImageSize
	if size == "" {
		size = "1792x1024"
	}

	return &Provider{
		client:     openai.NewClient(opts...),
		configured: config.APIKey != "",
		model:      model,
		size:       size,
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) Tier() domain.Tier { return domain.TierAlternate }
func (p *Provider) Configured() bool  { return p.configured }

// Accepts requires something to describe in the prompt.
func (p *Provider) Accepts(ref domain.ImageReference) bool {
	return prompt(ref) != ""
}

// Find generates a single image and returns its URL.
func (p *Provider) Find(ctx context.Context, ref domain.ImageReference) ([]domain.Candidate, error) {
	text := prompt(ref)
	if text == "" {
		return nil, errors.New("nothing to describe")
	}

	quality := openai.ImageGenerateParamsQuality("standard")
	if ref.Variant().Quality == domain.QualityPremium {
		quality = openai.ImageGenerateParamsQuality("hd")
	}

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         text,
		Model:          openai.ImageModel(p.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(p.size),
		Quality:        quality,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, errors.New("no image returned")
	}

	observability.FromContext(ctx).Info("image generated",
		observability.String("model", p.model))

	return []domain.Candidate{{
		Source: providerName,
		URL:    resp.Data[0].URL,
		Tier:   domain.TierAlternate,
	}}, nil
}

// prompt describes the reference for the image model.
func prompt(ref domain.ImageReference) string {
	subject := ref.Query()
	if subject == "" {
		subject = strings.Join(strings.FieldsFunc(stripExt(ref.Name()), isSeparator), " ")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("Professional product photograph of ")
	b.WriteString(subject)
	if c := ref.Category(); c != "" {
		b.WriteString(", ")
		b.WriteString(c)
		b.WriteString(" category")
	}
	b.WriteString(", clean studio lighting, landscape composition, no text")
	return b.String()
}

func stripExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == ' '
}
