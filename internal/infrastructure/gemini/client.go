package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/originlens/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is used when the request carries no model override.
	DefaultModel = "gemini-2.0-flash"

	defaultBaseURL       = "https://generativelanguage.googleapis.com"
	defaultTimeout       = 30 * time.Second
	defaultMaxInputChars = 1000
	maxOutputTokens      = 512

	// productSeparator joins title and description before cleaning so both
	// parts reach the model as one input.
	productSeparator = "\n"
)

// allowedModels is the override allow-list. Unknown names fail before any
// network call is made.
var allowedModels = map[string]bool{
	"gemini-2.0-flash": true,
	"gemini-2.5-flash": true,
	"gemini-1.5-flash": true,
	"gemini-1.5-pro":   true,
	"gemini-pro":       true,
}

// systemPrompt pins the extraction contract: JSON only, fixed five-field
// schema, ISO alpha-2 countries, 10-digit Japan Post HS codes.
const systemPrompt = `あなたは商品説明の製造国・属性検出の専門家です。
商品説明から「製造国 (Country of Origin)」「サイズ (Size)」「素材 (Material)」「対象ユーザー (Target User)」「HSコード (HS Code)」を抽出してください。

【重要ルール】
1. 製造国・原産国に焦点を当ててください。配送先やブランドの所在地から推測しないでください。
2. 明示的な手がかり（例：「Made in ...」「原産国：...」）を探してください。

【出力スキーマ (JSON)】
レスポンスは必ず以下のJSON形式のみを返してください。
{
  "attributes": {
    "country": {"value": ["XX"], "evidence": "抽出した根拠テキスト", "confidence": 0.0},
    "size": {"value": "抽出値", "evidence": "抽出した根拠テキスト", "confidence": 0.0},
    "material": {"value": "抽出値", "evidence": "抽出した根拠テキスト", "confidence": 0.0},
    "target_user": {"value": ["抽出値1"], "evidence": "抽出した根拠テキスト", "confidence": 0.0},
    "hscode": {"value": "10桁コード", "evidence": "抽出した根拠テキスト", "confidence": 0.0}
  }
}

【抽出ルール】
1. country: ISO 3166-1 alpha-2 コードに正規化 (Japan -> "JP")。見つからない場合は ["ZZ"]。複数国はリストで返却。
2. size / material: 見つからない場合は "none"。
3. target_user: "children", "adult", "men", "women", "senior", "baby", "unisex" から選択。複数可。見つからない場合は []。
4. hscode: 日本郵便の10桁HSコードを推定。不明な場合は ""。`

// Config holds Gemini client settings.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	Timeout       time.Duration
	MaxInputChars int
	ModelRPS      float64
	Logger        zerolog.Logger
}

// Client calls the Gemini generateContent REST API to extract product
// attributes. Safe for concurrent use.
type Client struct {
	httpClient    *http.Client
	apiKey        string
	model         string
	baseURL       string
	maxInputChars int
	rateLimiter   *rate.Limiter
	logger        zerolog.Logger
}

// NewClient creates a Gemini detector client.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = defaultMaxInputChars
	}
	if cfg.ModelRPS <= 0 {
		cfg.ModelRPS = 5
	}

	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		maxInputChars: cfg.MaxInputChars,
		rateLimiter:   rate.NewLimiter(rate.Limit(cfg.ModelRPS), 10),
		logger:        cfg.Logger.With().Str("component", "gemini").Logger(),
	}
}

// Wire types for the generateContent API.

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// attributesPayload is the JSON document the model is contracted to return.
type attributesPayload struct {
	Attributes *domain.Attributes `json:"attributes"`
}

// Detect extracts attributes from one free-text description. An empty model
// selects the configured default; an unknown model fails with
// domain.ErrModelNotFound before any network traffic.
func (c *Client) Detect(ctx context.Context, text, model string) (*domain.Attributes, error) {
	resolved, err := c.resolveModel(model)
	if err != nil {
		return nil, err
	}

	cleaned := cleanText(text)
	if cleaned == "" {
		return domain.DefaultAttributes(), nil
	}
	truncated := truncateText(cleaned, c.maxInputChars)

	raw, err := c.generate(ctx, resolved, truncated)
	if err != nil {
		return nil, err
	}

	return c.parseAttributes(raw, text), nil
}

// DetectProduct extracts attributes from a title+description pair.
func (c *Client) DetectProduct(ctx context.Context, title, description, model string) (*domain.Attributes, error) {
	return c.Detect(ctx, strings.TrimSpace(title)+productSeparator+strings.TrimSpace(description), model)
}

// resolveModel applies the default and the allow-list.
func (c *Client) resolveModel(override string) (string, error) {
	model := strings.TrimSpace(override)
	if model == "" {
		model = c.model
	}
	if !allowedModels[model] {
		return "", fmt.Errorf("%w: %q", domain.ErrModelNotFound, model)
	}
	return model, nil
}

// generate performs one generateContent call and returns the raw candidate
// text. Temperature is pinned to 0 and the response is contracted to JSON.
func (c *Client) generate(ctx context.Context, model, userText string) (string, error) {
	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: "この商品説明を分析し、構造化JSONを返却してください。\n\n商品説明:\n" + userText}},
			},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0,
			MaxOutputTokens:  maxOutputTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrUpstreamFailure, err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamFailure, err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrUpstreamFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrUpstreamFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp.StatusCode, rawBody, model)
	}

	var genResp generateResponse
	if err := json.Unmarshal(rawBody, &genResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrParseFailure, err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidates", domain.ErrParseFailure)
	}

	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// statusError maps non-200 upstream responses onto the error taxonomy.
func (c *Client) statusError(status int, body []byte, model string) error {
	var genResp generateResponse
	message := ""
	if err := json.Unmarshal(body, &genResp); err == nil && genResp.Error != nil {
		message = genResp.Error.Message
	}

	c.logger.Warn().Int("status", status).Str("model", model).Str("message", message).Msg("gemini api error")

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, message)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %q", domain.ErrModelNotFound, model)
	case strings.Contains(strings.ToLower(message), "not found"):
		return fmt.Errorf("%w: %q", domain.ErrModelNotFound, model)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamFailure, status, message)
	}
}

// parseAttributes decodes the candidate text against the expected schema.
// On decode failure it falls back to regex extraction over the original
// text, so detection itself never fails past this point.
func (c *Client) parseAttributes(raw, originalText string) *domain.Attributes {
	var parsed attributesPayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.Attributes == nil {
		c.logger.Warn().Err(err).Msg("json decode failed, falling back to heuristic extraction")
		attrs := heuristicExtract(originalText)
		attrs.FillDefaults()
		return attrs
	}

	attrs := parsed.Attributes
	sanitizeAttributes(attrs)
	attrs.FillDefaults()
	return attrs
}

// sanitizeAttributes strips newlines and collapses whitespace in every
// string value the model returned.
func sanitizeAttributes(a *domain.Attributes) {
	a.Country.Value = sanitizeStrings(a.Country.Value)
	a.Country.Evidence = sanitizeString(a.Country.Evidence)
	a.Size.Value = sanitizeString(a.Size.Value)
	a.Size.Evidence = sanitizeString(a.Size.Evidence)
	a.Material.Value = sanitizeString(a.Material.Value)
	a.Material.Evidence = sanitizeString(a.Material.Evidence)
	a.TargetUser.Value = sanitizeStrings(a.TargetUser.Value)
	a.TargetUser.Evidence = sanitizeString(a.TargetUser.Evidence)
	a.HSCode.Value = sanitizeString(a.HSCode.Value)
	a.HSCode.Evidence = sanitizeString(a.HSCode.Evidence)
}
