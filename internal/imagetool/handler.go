package imagetool

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"imageserver/internal/infra"
	"imageserver/internal/storage"
)

// Handler is the image request handler: it validates generation parameters,
// performs exactly one provider call, persists the resulting artifact, and
// shapes the uniform result. It holds no cross-invocation state and is safe
// for concurrent use.
type Handler struct {
	provider Provider
	store    *storage.ArtifactStore
	logger   *infra.Logger
	now      func() time.Time
}

// HandlerOptions configures a Handler. Provider and Store are required; the
// hosting process owns their lifecycles.
type HandlerOptions struct {
	Provider Provider
	Store    *storage.ArtifactStore
	Logger   *infra.Logger
	Now      func() time.Time
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Provider == nil {
		return nil, errors.New("imagetool: provider is required")
	}
	if opts.Store == nil {
		return nil, errors.New("imagetool: artifact store is required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{provider: opts.Provider, store: opts.Store, logger: logger, now: now}, nil
}

// GenerateImage runs one full invocation. Every failure mode, from bad
// parameters to a torn disk write, comes back as a result with Success false;
// nothing escapes to the caller as an error or a panic.
func (h *Handler) GenerateImage(ctx context.Context, req GenerationRequest) GenerationResult {
	resolved, err := req.resolve()
	if err != nil {
		return failure(err)
	}

	resp, err := h.provider.GenerateImages(ctx, ProviderRequest{
		Prompt:  resolved.outgoingPrompt(),
		Count:   resolved.Count,
		Size:    resolved.Size,
		Quality: resolved.Quality,
		Style:   resolved.Style,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("model", resolved.Model).Msg("image generation failed")
		return failure(err)
	}
	if resp == nil || len(resp.Images) == 0 {
		return failure(errors.New("provider returned no images"))
	}

	revised := resp.Images[0].RevisedPrompt
	if revised == "" {
		revised = resolved.Prompt
	}

	created := resp.Created
	if created.IsZero() {
		created = h.now()
	}

	artifact, err := h.store.Create(created)
	if err != nil {
		return failure(err)
	}

	imagePath, err := h.persistImages(ctx, artifact, resp.Images)
	if err != nil {
		h.discard(artifact, err)
		return failure(err)
	}

	metadataPath, err := h.store.WriteMetadata(artifact, storage.Metadata{
		Prompt:        resolved.Prompt,
		RevisedPrompt: revised,
		Title:         Title(resolved.Prompt),
		Model:         resolved.Model,
		Size:          resolved.Size,
		Quality:       resolved.Quality,
		Style:         resolved.Style,
		Count:         resolved.Count,
		RevisePrompt:  resolved.RevisePrompt,
		URL:           resp.Images[0].URL,
		Timestamp:     created.Unix(),
		ImagePath:     imagePath,
	})
	if err != nil {
		h.discard(artifact, err)
		return failure(err)
	}

	h.logger.Info().
		Str("artifact", artifact.Key).
		Str("model", resolved.Model).
		Str("size", resolved.Size).
		Msg("image artifact saved")

	return GenerationResult{
		Success:           true,
		RevisedPrompt:     revised,
		URL:               resp.Images[0].URL,
		Model:             resolved.Model,
		Size:              resolved.Size,
		Quality:           resolved.Quality,
		Style:             resolved.Style,
		Count:             resolved.Count,
		Timestamp:         created.Unix(),
		LocalImagePath:    imagePath,
		LocalMetadataPath: metadataPath,
	}
}

// persistImages downloads and writes every image of the batch, returning the
// first image's local path.
func (h *Handler) persistImages(ctx context.Context, artifact *storage.Artifact, images []ProviderImage) (string, error) {
	var first string
	for i, img := range images {
		data, mime, err := h.provider.Download(ctx, img.URL)
		if err != nil {
			return "", err
		}
		path, err := h.store.WriteImage(artifact, i, data, mime)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = path
		}
	}
	return first, nil
}

// discard rolls back a partially written artifact so a failed invocation
// never leaves metadata without its image, or vice versa.
func (h *Handler) discard(artifact *storage.Artifact, cause error) {
	if err := h.store.Remove(artifact); err != nil {
		h.logger.Error().Err(err).Str("artifact", artifact.Key).Msg("failed to clean up partial artifact")
		return
	}
	h.logger.Warn().Err(cause).Str("artifact", artifact.Key).Msg("discarded partial artifact")
}
