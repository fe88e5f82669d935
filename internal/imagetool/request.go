package imagetool

import (
	"errors"
	"fmt"
	"strings"
)

// Supported model variants. ModelDallE3 is the newest and the default.
const (
	ModelDallE3 = "dalle3"
	ModelDallE2 = "dalle2"
)

const (
	QualityStandard = "standard"
	QualityHD       = "hd"
)

const (
	StyleNatural = "natural"
	StyleVivid   = "vivid"
)

const (
	DefaultSize    = "1024x1024"
	DefaultQuality = QualityStandard
	DefaultCount   = 1

	MinCount = 1
	MaxCount = 10
)

// ErrValidation tags every parameter-validation failure so callers can tell
// it apart from provider and persistence errors.
var ErrValidation = errors.New("invalid request")

// noRevisionSuffix is appended to the outgoing prompt when the caller opts out
// of provider-side prompt rewriting.
const noRevisionSuffix = " do not modify my prompt"

var sizesByModel = map[string][]string{
	ModelDallE3: {"1024x1024", "1792x1024", "1024x1792"},
	ModelDallE2: {"256x256", "512x512", "1024x1024"},
}

// GenerationRequest is the raw input to one tool invocation. Zero values mean
// "not supplied"; RevisePrompt defaults to true, so it is a pointer.
type GenerationRequest struct {
	Prompt       string `json:"prompt"`
	Size         string `json:"size,omitempty"`
	Quality      string `json:"quality,omitempty"`
	Count        int    `json:"n,omitempty"`
	Style        string `json:"style,omitempty"`
	Model        string `json:"model,omitempty"`
	RevisePrompt *bool  `json:"revise_prompt,omitempty"`
}

// resolvedRequest is a GenerationRequest after validation and defaulting.
// Every field carries its final value; no zero-value ambiguity remains.
type resolvedRequest struct {
	Prompt       string
	Size         string
	Quality      string
	Count        int
	Style        string
	Model        string
	RevisePrompt bool
}

// resolve validates the request and applies documented defaults. It has no
// side effects and must succeed before any remote call is attempted.
func (r GenerationRequest) resolve() (resolvedRequest, error) {
	out := resolvedRequest{
		Prompt:       strings.TrimSpace(r.Prompt),
		Size:         strings.TrimSpace(r.Size),
		Quality:      strings.TrimSpace(r.Quality),
		Count:        r.Count,
		Style:        strings.TrimSpace(r.Style),
		Model:        strings.TrimSpace(r.Model),
		RevisePrompt: true,
	}
	if r.RevisePrompt != nil {
		out.RevisePrompt = *r.RevisePrompt
	}

	if out.Prompt == "" {
		return out, fmt.Errorf("%w: prompt is required", ErrValidation)
	}

	if out.Model == "" {
		out.Model = ModelDallE3
	}
	sizes, ok := sizesByModel[out.Model]
	if !ok {
		return out, fmt.Errorf("%w: model must be either %q or %q", ErrValidation, ModelDallE3, ModelDallE2)
	}

	if out.Size == "" {
		out.Size = DefaultSize
	}
	if !contains(sizes, out.Size) {
		return out, fmt.Errorf("%w: size %q is not supported by model %s (supported: %s)",
			ErrValidation, out.Size, out.Model, strings.Join(sizes, ", "))
	}

	if out.Quality == "" {
		out.Quality = DefaultQuality
	}
	if out.Quality != QualityStandard && out.Quality != QualityHD {
		return out, fmt.Errorf("%w: quality must be %q or %q", ErrValidation, QualityStandard, QualityHD)
	}
	if out.Model == ModelDallE2 && out.Quality != QualityStandard {
		return out, fmt.Errorf("%w: model %s only supports %q quality", ErrValidation, ModelDallE2, QualityStandard)
	}

	if out.Count == 0 {
		out.Count = DefaultCount
	}
	if out.Count < MinCount || out.Count > MaxCount {
		return out, fmt.Errorf("%w: number of images (n) must be between %d and %d", ErrValidation, MinCount, MaxCount)
	}
	if out.Model == ModelDallE3 && out.Count != 1 {
		return out, fmt.Errorf("%w: model %s generates a single image per request", ErrValidation, ModelDallE3)
	}

	if out.Style != "" {
		if out.Style != StyleNatural && out.Style != StyleVivid {
			return out, fmt.Errorf("%w: style must be %q or %q", ErrValidation, StyleNatural, StyleVivid)
		}
		if out.Model != ModelDallE3 {
			return out, fmt.Errorf("%w: style is only supported by model %s", ErrValidation, ModelDallE3)
		}
	}

	return out, nil
}

// outgoingPrompt is the prompt actually sent to the provider. Opting out of
// prompt revision appends an instruction the provider honors instead of a
// dedicated API switch.
func (r resolvedRequest) outgoingPrompt() string {
	if r.RevisePrompt {
		return r.Prompt
	}
	return r.Prompt + noRevisionSuffix
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
