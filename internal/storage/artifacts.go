package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	imageFilePrefix  = "generated_image"
	metadataFileName = "metadata.json"
	dirTimeFormat    = "20060102_150405"
)

// ErrNotFound is returned when a requested artifact key has no directory.
var ErrNotFound = errors.New("storage: artifact not found")

// Metadata is the structured record written next to every generated image.
// It round-trips through JSON without loss.
type Metadata struct {
	Prompt        string `json:"prompt"`
	RevisedPrompt string `json:"revised_prompt"`
	Title         string `json:"title,omitempty"`
	Model         string `json:"model"`
	Size          string `json:"size"`
	Quality       string `json:"quality"`
	Style         string `json:"style,omitempty"`
	Count         int    `json:"n"`
	RevisePrompt  bool   `json:"revise_prompt"`
	URL           string `json:"url"`
	Timestamp     int64  `json:"timestamp"`
	ImagePath     string `json:"image_path"`
}

// Artifact is a handle onto one invocation's directory under the images root.
type Artifact struct {
	Key  string
	Path string
}

// StoredArtifact pairs an artifact key with its parsed metadata when listing.
type StoredArtifact struct {
	Key      string   `json:"key"`
	Metadata Metadata `json:"metadata"`
}

// ArtifactStore persists generated images and their metadata onto the local
// filesystem under a fixed root. It keeps no in-memory state; the directory
// tree is the sole source of truth.
type ArtifactStore struct {
	root string
}

// NewArtifactStore initializes a store rooted at root, creating it if needed.
func NewArtifactStore(root string) (*ArtifactStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: images root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure images root: %w", err)
	}
	return &ArtifactStore{root: root}, nil
}

// Root returns the configured images root directory.
func (s *ArtifactStore) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Create allocates a fresh directory keyed by the local timestamp at second
// resolution. When two invocations land in the same second the key gains a
// short random suffix, so concurrent calls never share a directory. os.Mkdir
// is the atomicity guarantee: it fails on an existing path.
func (s *ArtifactStore) Create(ts time.Time) (*Artifact, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	key := ts.Local().Format(dirTimeFormat)
	path := filepath.Join(s.root, key)
	err := os.Mkdir(path, 0o755)
	for errors.Is(err, os.ErrExist) {
		key = ts.Local().Format(dirTimeFormat) + "_" + uuid.NewString()[:8]
		path = filepath.Join(s.root, key)
		err = os.Mkdir(path, 0o755)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: create artifact directory: %w", err)
	}
	return &Artifact{Key: key, Path: path}, nil
}

// WriteImage stores one image's bytes inside the artifact directory and
// returns the written path. The first image keeps the fixed name the layout
// promises; follow-up images of a batch gain an index.
func (s *ArtifactStore) WriteImage(a *Artifact, index int, data []byte, mime string) (string, error) {
	if a == nil {
		return "", errors.New("storage: artifact is required")
	}
	name := imageFilePrefix + "." + ExtensionForMIME(mime)
	if index > 0 {
		name = fmt.Sprintf("%s_%d.%s", imageFilePrefix, index+1, ExtensionForMIME(mime))
	}
	path := filepath.Join(a.Path, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write image: %w", err)
	}
	return path, nil
}

// WriteMetadata stores the metadata document inside the artifact directory
// and returns the written path.
func (s *ArtifactStore) WriteMetadata(a *Artifact, meta Metadata) (string, error) {
	if a == nil {
		return "", errors.New("storage: artifact is required")
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: encode metadata: %w", err)
	}
	path := filepath.Join(a.Path, metadataFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("storage: write metadata: %w", err)
	}
	return path, nil
}

// Remove deletes the artifact directory and everything inside it. It is used
// to roll back partially written artifacts after a failure.
func (s *ArtifactStore) Remove(a *Artifact) error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.RemoveAll(a.Path); err != nil {
		return fmt.Errorf("storage: remove artifact: %w", err)
	}
	return nil
}

// List scans the images root and returns every artifact that carries a
// readable metadata document, newest key first. Directories without metadata
// are skipped rather than reported.
func (s *ArtifactStore) List() ([]StoredArtifact, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("storage: read images root: %w", err)
	}
	var out []StoredArtifact
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, StoredArtifact{Key: entry.Name(), Metadata: meta})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

// Get returns one artifact's metadata by key.
func (s *ArtifactStore) Get(key string) (Metadata, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return Metadata{}, err
	}
	meta, err := s.readMetadata(key)
	if errors.Is(err, os.ErrNotExist) {
		return Metadata{}, ErrNotFound
	}
	return meta, err
}

// Files returns the names and contents of every file stored for the given
// artifact key, for archive downloads.
func (s *ArtifactStore) Files(key string) (map[string][]byte, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, key)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read artifact: %w", err)
	}
	files := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: read artifact file: %w", err)
		}
		files[entry.Name()] = data
	}
	return files, nil
}

func (s *ArtifactStore) readMetadata(key string) (Metadata, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, key, metadataFileName))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("storage: decode metadata: %w", err)
	}
	return meta, nil
}

// ExtensionForMIME maps an image content type onto a file extension. Unknown
// types fall back to png, the provider's usual output format.
func ExtensionForMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// sanitizeKey rejects keys that could escape the images root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	cleaned := filepath.Clean(strings.ReplaceAll(key, "\\", "/"))
	if cleaned == "." || strings.Contains(cleaned, "/") || strings.HasPrefix(cleaned, "..") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
