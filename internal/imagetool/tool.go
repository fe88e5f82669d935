package imagetool

import (
	"context"
	"encoding/json"
	"fmt"

	"imageserver/internal/tool"
)

// ToolName is the operation name the handler is exposed under.
const ToolName = "generate_image"

// Tool wraps the handler as a registrable tool. Argument decoding errors are
// transport-level and surface as errors; everything past decoding comes back
// as a GenerationResult.
func (h *Handler) Tool() tool.Tool {
	return tool.Tool{
		Name:        ToolName,
		Description: "Generate an image from a text prompt and store it locally with its metadata.",
		Params: []tool.Param{
			{Name: "prompt", Type: "string", Description: "Text prompt to generate the image from.", Required: true},
			{Name: "size", Type: "string", Description: "Image size: 1024x1024, 1792x1024 or 1024x1792 (dalle3); 256x256, 512x512 or 1024x1024 (dalle2). Default 1024x1024."},
			{Name: "quality", Type: "string", Description: "Image quality: standard or hd. Default standard."},
			{Name: "n", Type: "integer", Description: "Number of images to generate, 1-10. Default 1."},
			{Name: "style", Type: "string", Description: "Image style: natural or vivid."},
			{Name: "model", Type: "string", Description: "Model variant: dalle3 or dalle2. Default dalle3."},
			{Name: "revise_prompt", Type: "boolean", Description: "Allow the provider to rewrite the prompt. Default true."},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var req GenerationRequest
			if len(args) > 0 {
				if err := json.Unmarshal(args, &req); err != nil {
					return nil, fmt.Errorf("decode %s arguments: %w", ToolName, err)
				}
			}
			return h.GenerateImage(ctx, req), nil
		},
	}
}
