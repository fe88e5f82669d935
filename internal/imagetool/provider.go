package imagetool

import (
	"context"
	"time"

	"imageserver/internal/providers/dalle"
)

// ProviderRequest describes one normalized generation call to any provider.
type ProviderRequest struct {
	Prompt  string
	Count   int
	Size    string
	Quality string
	Style   string
}

// ProviderImage is a single generated image reference.
type ProviderImage struct {
	URL           string
	RevisedPrompt string
}

// ProviderResult is a normalized provider response.
type ProviderResult struct {
	Created time.Time
	Images  []ProviderImage
}

// Provider is the contract the handler depends on. The hosting process owns
// client construction and credentials; the handler only ever sees this
// interface.
type Provider interface {
	GenerateImages(ctx context.Context, req ProviderRequest) (*ProviderResult, error)
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// DalleProvider adapts the Azure OpenAI client to the Provider contract.
type DalleProvider struct {
	client *dalle.Client
}

func NewDalleProvider(client *dalle.Client) *DalleProvider {
	return &DalleProvider{client: client}
}

func (p *DalleProvider) GenerateImages(ctx context.Context, req ProviderRequest) (*ProviderResult, error) {
	resp, err := p.client.GenerateImages(ctx, dalle.ImageRequest{
		Prompt:  req.Prompt,
		Count:   req.Count,
		Size:    req.Size,
		Quality: req.Quality,
		Style:   req.Style,
	})
	if err != nil {
		return nil, err
	}
	out := &ProviderResult{Created: resp.Created}
	for _, img := range resp.Images {
		out.Images = append(out.Images, ProviderImage{URL: img.URL, RevisedPrompt: img.RevisedPrompt})
	}
	return out, nil
}

func (p *DalleProvider) Download(ctx context.Context, url string) ([]byte, string, error) {
	return p.client.Download(ctx, url)
}

var _ Provider = (*DalleProvider)(nil)
