package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *ArtifactStore {
	t.Helper()
	store, err := NewArtifactStore(filepath.Join(t.TempDir(), "images"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestCreateUsesTimestampKey(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	artifact, err := store.Create(ts)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if artifact.Key != "20260314_150926" {
		t.Fatalf("key = %q", artifact.Key)
	}
	info, err := os.Stat(artifact.Path)
	if err != nil || !info.IsDir() {
		t.Fatalf("artifact directory missing: %v", err)
	}
}

func TestCreateResolvesCollisions(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	first, err := store.Create(ts)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := store.Create(ts)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.Path == second.Path {
		t.Fatalf("collision not resolved: both at %s", first.Path)
	}
	if !strings.HasPrefix(second.Key, "20260314_150926_") {
		t.Fatalf("second key = %q, want timestamp with suffix", second.Key)
	}
}

func TestWriteImageNaming(t *testing.T) {
	store := newTestStore(t)
	artifact, err := store.Create(time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := store.WriteImage(artifact, 0, []byte("a"), "image/png")
	if err != nil {
		t.Fatalf("write first: %v", err)
	}
	if filepath.Base(first) != "generated_image.png" {
		t.Fatalf("first image name = %s", filepath.Base(first))
	}
	second, err := store.WriteImage(artifact, 1, []byte("b"), "image/jpeg; charset=binary")
	if err != nil {
		t.Fatalf("write second: %v", err)
	}
	if filepath.Base(second) != "generated_image_2.jpg" {
		t.Fatalf("second image name = %s", filepath.Base(second))
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	artifact, err := store.Create(time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	meta := Metadata{
		Prompt:        "a red door",
		RevisedPrompt: "a very red door",
		Title:         "A Red Door",
		Model:         "dalle3",
		Size:          "1024x1024",
		Quality:       "hd",
		Style:         "vivid",
		Count:         1,
		RevisePrompt:  true,
		URL:           "https://img.example/1.png",
		Timestamp:     1773500966,
		ImagePath:     filepath.Join(artifact.Path, "generated_image.png"),
	}
	path, err := store.WriteMetadata(artifact, meta)
	if err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var parsed Metadata
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if !reflect.DeepEqual(meta, parsed) {
		t.Fatalf("round trip mismatch:\nwrote %#v\nread  %#v", meta, parsed)
	}
	got, err := store.Get(artifact.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(meta, got) {
		t.Fatalf("get mismatch: %#v", got)
	}
}

func TestRemoveDeletesDirectory(t *testing.T) {
	store := newTestStore(t)
	artifact, err := store.Create(time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.WriteImage(artifact, 0, []byte("a"), "image/png"); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := store.Remove(artifact); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(artifact.Path); !os.IsNotExist(err) {
		t.Fatalf("directory still present: %v", err)
	}
}

func TestListSkipsIncompleteArtifacts(t *testing.T) {
	store := newTestStore(t)
	complete, err := store.Create(time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.WriteMetadata(complete, Metadata{Prompt: "kept"}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	if _, err := store.Create(time.Date(2026, 3, 14, 11, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("create empty: %v", err)
	}

	items, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Key != complete.Key || items[0].Metadata.Prompt != "kept" {
		t.Fatalf("unexpected item: %#v", items[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	for _, hour := range []int{9, 11, 10} {
		artifact, err := store.Create(time.Date(2026, 3, 14, hour, 0, 0, 0, time.Local))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := store.WriteMetadata(artifact, Metadata{Prompt: "p"}); err != nil {
			t.Fatalf("write metadata: %v", err)
		}
	}
	items, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Key < items[i].Key {
			t.Fatalf("not newest first: %s before %s", items[i-1].Key, items[i].Key)
		}
	}
}

func TestFilesReturnsArtifactContents(t *testing.T) {
	store := newTestStore(t)
	artifact, err := store.Create(time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.WriteImage(artifact, 0, []byte("img"), "image/png"); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if _, err := store.WriteMetadata(artifact, Metadata{Prompt: "p"}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	files, err := store.Files(artifact.Key)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	if string(files["generated_image.png"]) != "img" {
		t.Fatalf("image content = %q", files["generated_image.png"])
	}
}

func TestGetRejectsTraversalKeys(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"", "../secrets", "a/b", "..", ".\\..\\x"} {
		if _, err := store.Get(key); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

func TestGetMissingArtifact(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get("20260314_000000"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestExtensionForMIME(t *testing.T) {
	cases := map[string]string{
		"image/png":                "png",
		"image/jpeg":               "jpg",
		"image/webp":               "webp",
		"image/gif":                "gif",
		"image/png; charset=bin":   "png",
		"application/octet-stream": "png",
		"":                         "png",
	}
	for mime, want := range cases {
		if got := ExtensionForMIME(mime); got != want {
			t.Fatalf("ExtensionForMIME(%q) = %q, want %q", mime, got, want)
		}
	}
}
