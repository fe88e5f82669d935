package dalle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imageserver/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("dalle: api key is required")

// Options configures the Azure OpenAI image-generation client.
type Options struct {
	APIKey         string
	Endpoint       string
	Deployment     string
	APIVersion     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against an Azure OpenAI DALL-E deployment.
type Client struct {
	apiKey     string
	endpoint   string
	deployment string
	apiVersion string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest captures the provider-level inputs for one generation call.
type ImageRequest struct {
	Prompt  string
	Count   int
	Size    string
	Quality string
	Style   string
}

// Image is a single generated image reference returned by the provider.
type Image struct {
	URL           string
	RevisedPrompt string
}

// ImageResponse is the normalized provider response.
type ImageResponse struct {
	Created time.Time
	Images  []Image
}

type generationRequest struct {
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style,omitempty"`
}

type generationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("dalle: endpoint is required")
	}
	deployment := strings.TrimSpace(opts.Deployment)
	if deployment == "" {
		deployment = "dalle3"
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "2024-02-01"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		endpoint:   endpoint,
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Deployment returns the configured deployment identifier.
func (c *Client) Deployment() string {
	return c.deployment
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// GenerateImages invokes the image-generation endpoint exactly once and
// returns every image reference the provider produced.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("dalle: prompt is required")
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}
	payload := generationRequest{
		Prompt:  prompt,
		N:       count,
		Size:    req.Size,
		Quality: req.Quality,
		Style:   req.Style,
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/images/generations?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dalle: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dalle: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dalle: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dalle: read response: %w", err)
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("dalle: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return nil, fmt.Errorf("dalle: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("dalle: %s (%s)", decoded.Error.Message, decoded.Error.Code)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dalle: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(decoded.Data) == 0 {
		return nil, errors.New("dalle: empty image data")
	}

	out := &ImageResponse{Created: time.Unix(decoded.Created, 0)}
	if decoded.Created == 0 {
		out.Created = time.Now()
	}
	for _, item := range decoded.Data {
		if strings.TrimSpace(item.URL) == "" {
			return nil, errors.New("dalle: missing image url")
		}
		out.Images = append(out.Images, Image{URL: item.URL, RevisedPrompt: item.RevisedPrompt})
	}
	c.logger.Debug().
		Str("deployment", c.deployment).
		Int("images", len(out.Images)).
		Msg("dalle: generated image batch")
	return out, nil
}

// Download fetches the image bytes behind a provider-hosted URL and returns
// them alongside the reported content type.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Scheme == "" {
		return nil, "", fmt.Errorf("dalle: invalid image url: %s", imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("dalle: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("dalle: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("dalle: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("dalle: read image: %w", err)
	}
	format := resp.Header.Get("Content-Type")
	if format == "" {
		format = "image/png"
	}
	return data, format, nil
}
