package llmclient

import (
	"context"
	"fmt"
	"io"
	"strings"

	genai "google.golang.org/genai"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
)

// Fixed sampling parameters. Only temperature is caller-selectable.
const (
	samplingTopP    = 0.95
	samplingTopK    = 40
	maxOutputTokens = 4096
)

var ErrEmptyResponse = fmt.Errorf("empty response from model")

// GeminiClient is a thin wrapper around the official genai client. It only
// focuses on the API calls themselves; cross-cutting concerns (logging,
// hooks) are applied via Middleware.
type GeminiClient struct {
	cli *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, chat.NewConfigurationError(chat.ErrMissingAPIKey)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli}, nil
}

// StartChat binds a conversation to the model and generation settings and
// seeds it with the given history. The handle carries the model-side history
// from then on; creation itself makes no network call.
func (g *GeminiClient) StartChat(_ context.Context, cfg chat.ModelConfig, seed []chat.SeedMessage) (chat.SessionHandle, error) {
	if !KnownModel(cfg.Model) {
		return nil, fmt.Errorf("unknown model %q", cfg.Model)
	}
	history := make([]*genai.Content, 0, len(seed))
	for _, m := range seed {
		history = append(history, &genai.Content{
			Role:  roleOf(m.Role),
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}
	return &geminiChat{
		cli:     g.cli,
		model:   cfg.Model,
		config:  generationConfig(cfg.Temperature),
		history: history,
	}, nil
}

// Upload pushes a reference document to the Gemini File API and returns the
// opaque reference used as a message part. Gemini parses the PDF internally;
// no local text extraction happens on this path.
func (g *GeminiClient) Upload(ctx context.Context, r io.Reader, name, mimeType string) (chat.DocumentRef, error) {
	file, err := g.cli.Files.Upload(ctx, r, &genai.UploadFileConfig{
		DisplayName: name,
		MIMEType:    mimeType,
	})
	if err != nil {
		return chat.DocumentRef{}, err
	}
	return chat.DocumentRef{
		ID:       file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
		Name:     name,
	}, nil
}

// geminiChat is one live conversation: the seeded turns plus every exchange
// sent and received through it.
type geminiChat struct {
	cli     *genai.Client
	model   string
	config  *genai.GenerateContentConfig
	history []*genai.Content
}

// Send appends the outbound message to the conversation history and asks the
// model for the next turn. A failed call leaves the history unchanged so the
// model-side pairing stays consistent with the visible transcript.
func (c *geminiChat) Send(ctx context.Context, parts []chat.MessagePart) (string, error) {
	content, err := toContent(parts)
	if err != nil {
		return "", err
	}
	attempt := append(c.history[:len(c.history):len(c.history)], content)

	resp, err := c.cli.Models.GenerateContent(ctx, c.model, attempt, c.config)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Candidates[0].Content.Parts[0].Text

	c.history = append(attempt, &genai.Content{
		Role:  string(genai.RoleModel),
		Parts: []*genai.Part{{Text: text}},
	})
	return text, nil
}

func toContent(parts []chat.MessagePart) (*genai.Content, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("message has no parts")
	}
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case chat.PartText:
			out = append(out, &genai.Part{Text: p.Text})
		case chat.PartDocument:
			out = append(out, &genai.Part{FileData: &genai.FileData{
				FileURI:  p.Doc.URI,
				MIMEType: p.Doc.MIMEType,
			}})
		default:
			return nil, fmt.Errorf("unknown message part kind %d", p.Kind)
		}
	}
	return &genai.Content{Role: string(genai.RoleUser), Parts: out}, nil
}

func roleOf(r chat.Role) string {
	if r == chat.RoleAssistant {
		return string(genai.RoleModel)
	}
	return string(genai.RoleUser)
}

func generationConfig(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		TopP:            genai.Ptr[float32](samplingTopP),
		TopK:            genai.Ptr[float32](samplingTopK),
		MaxOutputTokens: maxOutputTokens,
	}
}
