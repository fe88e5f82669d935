package imagetool

// GenerationResult is the uniform outcome of one tool invocation. It is
// created fresh per invocation and never mutated afterwards. Failures of any
// kind populate only Success and Error.
type GenerationResult struct {
	Success           bool   `json:"success"`
	RevisedPrompt     string `json:"revised_prompt,omitempty"`
	URL               string `json:"url,omitempty"`
	Model             string `json:"model,omitempty"`
	Size              string `json:"size,omitempty"`
	Quality           string `json:"quality,omitempty"`
	Style             string `json:"style,omitempty"`
	Count             int    `json:"n,omitempty"`
	Timestamp         int64  `json:"timestamp,omitempty"`
	LocalImagePath    string `json:"local_image_path,omitempty"`
	LocalMetadataPath string `json:"local_metadata_path,omitempty"`
	Error             string `json:"error,omitempty"`
}

func failure(err error) GenerationResult {
	return GenerationResult{Error: err.Error()}
}
