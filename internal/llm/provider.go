package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Provider definiert das Interface für LLM-Backends
type Provider interface {
	// Generate erzeugt eine Antwort basierend auf dem Prompt
	Generate(ctx context.Context, prompt string, options *GenerateOptions) (*GenerateResponse, error)

	// IsAvailable prüft, ob das Backend erreichbar ist
	IsAvailable(ctx context.Context) bool

	// GetName gibt den Namen des Providers zurück
	GetName() string

	// SetModel ändert das verwendete Modell
	SetModel(model string)

	// GetCurrentModel gibt das aktuelle Modell zurück
	GetCurrentModel() string
}

// GenerateOptions enthält optionale Parameter für die Generierung
type GenerateOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	System      string  `json:"system,omitempty"`
}

// GenerateResponse enthält die Antwort des LLM
type GenerateResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	TotalTokens  int    `json:"total_tokens"`
	PromptTokens int    `json:"prompt_tokens"`
	Done         bool   `json:"done"`
}

// GeminiProvider implementiert den Provider für die Gemini-REST-API
type GeminiProvider struct {
	baseURL      string
	apiKey       string
	defaultModel string
	client       *http.Client
}

// NewGeminiProvider erstellt einen neuen Gemini-Provider
func NewGeminiProvider(baseURL, apiKey, defaultModel string) *GeminiProvider {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if defaultModel == "" {
		defaultModel = "gemini-1.5-flash"
	}

	return &GeminiProvider{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (g *GeminiProvider) GetName() string {
	return "Gemini"
}

// SetModel ändert das Standard-Modell
func (g *GeminiProvider) SetModel(model string) {
	if model != "" {
		g.defaultModel = model
	}
}

// GetCurrentModel gibt das aktuelle Modell zurück
func (g *GeminiProvider) GetCurrentModel() string {
	return g.defaultModel
}

// IsAvailable prüft API-Key und Erreichbarkeit mit einer Mini-Anfrage
func (g *GeminiProvider) IsAvailable(ctx context.Context) bool {
	if g.apiKey == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := g.Generate(ctx, "ping", &GenerateOptions{MaxTokens: 1})
	return err == nil
}

// geminiRequest ist der Request-Body der generateContent-API
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Config   *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse ist der Response-Body der generateContent-API
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount int `json:"promptTokenCount"`
		TotalTokenCount  int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, options *GenerateOptions) (*GenerateResponse, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini api-key fehlt")
	}

	model := g.defaultModel
	body := geminiRequest{}

	if options != nil {
		if options.Model != "" {
			model = options.Model
		}
		if options.Temperature > 0 || options.MaxTokens > 0 {
			body.Config = &geminiConfig{
				Temperature:     options.Temperature,
				MaxOutputTokens: options.MaxTokens,
			}
		}
		if options.System != "" {
			prompt = options.System + "\n\n" + prompt
		}
	}
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini-anfrage fehlgeschlagen: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini-fehler (%d): %s", resp.StatusCode, string(raw))
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gemini-antwort unlesbar: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini-antwort leer")
	}

	log.Printf("   [Gemini] ✓ Antwort nach %v (%d Tokens)", time.Since(start), result.UsageMetadata.TotalTokenCount)

	return &GenerateResponse{
		Content:      result.Candidates[0].Content.Parts[0].Text,
		Model:        model,
		TotalTokens:  result.UsageMetadata.TotalTokenCount,
		PromptTokens: result.UsageMetadata.PromptTokenCount,
		Done:         true,
	}, nil
}
