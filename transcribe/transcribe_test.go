package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdmend/llm"
	"mdmend/raster"
	"mdmend/store"
)

// fakeProvider replays scripted responses per model.
type fakeProvider struct {
	responses map[string][]string
	calls     map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		responses: make(map[string][]string),
		calls:     make(map[string]int),
	}
}

func (f *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) ChatWithImages(ctx context.Context, req llm.VisionChatRequest) (*llm.ChatResponse, error) {
	f.calls[req.Model]++
	queue := f.responses[req.Model]
	if len(queue) == 0 {
		return &llm.ChatResponse{Content: "no fence here"}, nil
	}
	r := queue[0]
	f.responses[req.Model] = queue[1:]
	return &llm.ChatResponse{Content: r, Model: req.Model}, nil
}

// fakeCache is an in-memory Cache.
type fakeCache struct {
	m    map[string]string
	puts int
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string]string)}
}

func cacheKey(docHash string, page int, model string) string {
	return fmt.Sprintf("%s/%d/%s", docHash, page, model)
}

func (c *fakeCache) GetPage(ctx context.Context, docHash string, page int, model string) (string, bool, error) {
	md, ok := c.m[cacheKey(docHash, page, model)]
	return md, ok, nil
}

func (c *fakeCache) PutPage(ctx context.Context, t store.Transcription) error {
	c.puts++
	c.m[cacheKey(t.DocHash, t.Page, t.Model)] = t.Markdown
	return nil
}

func writePageFiles(t *testing.T, n int) []raster.Page {
	t.Helper()
	dir := t.TempDir()
	pages := make([]raster.Page, 0, n)
	for i := 1; i <= n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("page-%02d.png", i))
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
		pages = append(pages, raster.Page{Number: i, Path: path})
	}
	return pages
}

// ---------------------------------------------------------------------------
// Fence extraction
// ---------------------------------------------------------------------------

func TestExtractMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "tagged fence",
			response: "```markdown\n# Heading\n\nBody\n```",
			want:     "# Heading\n\nBody",
		},
		{
			name:     "untagged fence",
			response: "```\n| A | B |\n```",
			want:     "| A | B |",
		},
		{
			name:     "first of several blocks",
			response: "```markdown\nfirst\n```\ntext\n```markdown\nsecond\n```",
			want:     "first",
		},
		{
			name:     "surrounding chatter",
			response: "Here is the page:\n```markdown\ncontent\n```\nHope that helps!",
			want:     "content",
		},
		{
			name:     "no fence",
			response: "# Heading without a fence",
			want:     "",
		},
		{
			name:     "empty fence",
			response: "```markdown\n```",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMarkdown(tt.response); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(17)
	if !strings.Contains(p, "page 17") {
		t.Errorf("prompt missing page number: %q", p)
	}
	if !strings.Contains(p, "```markdown") {
		t.Errorf("prompt missing fence requirement")
	}
}

// ---------------------------------------------------------------------------
// Document transcription
// ---------------------------------------------------------------------------

func TestDocumentWrapsPages(t *testing.T) {
	provider := newFakeProvider()
	provider.responses["gpt-4o"] = []string{
		"```markdown\nFirst page body\n```",
		"```markdown\nSecond page body\n```",
	}

	tr := New(provider, nil, Config{PrimaryModel: "gpt-4o", FallbackModel: "gpt-4o-mini"})
	pages := writePageFiles(t, 2)

	got, stats, err := tr.Document(context.Background(), "hash", pages)
	if err != nil {
		t.Fatal(err)
	}

	want := "# Page 1\n\nFirst page body\n\n# Page 2\n\nSecond page body\n\n"
	if got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
	if stats.Pages != 2 || stats.Cached != 0 || len(stats.FailedPages) != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDocumentFallsBackToSecondModel(t *testing.T) {
	provider := newFakeProvider()
	// Primary never returns a fence; fallback succeeds on its first try.
	provider.responses["gpt-4o-mini"] = []string{"```markdown\nrescued\n```"}

	tr := New(provider, nil, Config{PrimaryModel: "gpt-4o", FallbackModel: "gpt-4o-mini", MaxRetries: 3})
	pages := writePageFiles(t, 1)

	got, stats, err := tr.Document(context.Background(), "hash", pages)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(got, "rescued") {
		t.Errorf("fallback content missing: %q", got)
	}
	if provider.calls["gpt-4o"] != 3 {
		t.Errorf("primary attempts = %d, want 3", provider.calls["gpt-4o"])
	}
	if provider.calls["gpt-4o-mini"] != 1 {
		t.Errorf("fallback attempts = %d, want 1", provider.calls["gpt-4o-mini"])
	}
	if len(stats.FailedPages) != 0 {
		t.Errorf("failed pages = %v", stats.FailedPages)
	}
}

func TestDocumentFailureMarker(t *testing.T) {
	provider := newFakeProvider() // never returns a fence

	tr := New(provider, nil, Config{PrimaryModel: "gpt-4o", FallbackModel: "gpt-4o-mini", MaxRetries: 2})
	pages := writePageFiles(t, 1)

	got, stats, err := tr.Document(context.Background(), "hash", pages)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(got, "> (FAILED after all attempts, including fallback model 'gpt-4o-mini')") {
		t.Errorf("failure marker missing: %q", got)
	}
	if !strings.Contains(got, "No valid Markdown block found.") {
		t.Errorf("failure body missing: %q", got)
	}
	// Page heading survives so the document stays page-complete.
	if !strings.HasPrefix(got, "# Page 1\n\n") {
		t.Errorf("page wrapper missing: %q", got)
	}
	if len(stats.FailedPages) != 1 || stats.FailedPages[0] != 1 {
		t.Errorf("failed pages = %v, want [1]", stats.FailedPages)
	}
	if provider.calls["gpt-4o"] != 2 || provider.calls["gpt-4o-mini"] != 2 {
		t.Errorf("calls = %v, want 2 per model", provider.calls)
	}
}

func TestDocumentUsesCache(t *testing.T) {
	provider := newFakeProvider()
	cache := newFakeCache()
	cache.m[cacheKey("hash", 1, "gpt-4o")] = "cached body"

	tr := New(provider, cache, Config{PrimaryModel: "gpt-4o", FallbackModel: "gpt-4o-mini"})
	pages := writePageFiles(t, 1)

	got, stats, err := tr.Document(context.Background(), "hash", pages)
	if err != nil {
		t.Fatal(err)
	}

	if got != "# Page 1\n\ncached body\n\n" {
		t.Errorf("document = %q", got)
	}
	if stats.Cached != 1 {
		t.Errorf("cached = %d, want 1", stats.Cached)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider was called: %v", provider.calls)
	}
}

// A cache entry under the fallback model also counts as a hit, so a
// page rescued by the fallback in an earlier run is not re-attempted on
// the primary.
func TestDocumentCacheHitOnFallbackModel(t *testing.T) {
	provider := newFakeProvider()
	cache := newFakeCache()
	cache.m[cacheKey("hash", 1, "gpt-4o-mini")] = "fallback cached"

	tr := New(provider, cache, Config{PrimaryModel: "gpt-4o", FallbackModel: "gpt-4o-mini"})
	pages := writePageFiles(t, 1)

	got, _, err := tr.Document(context.Background(), "hash", pages)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "fallback cached") {
		t.Errorf("document = %q", got)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider was called: %v", provider.calls)
	}
}

func TestDocumentWritesCache(t *testing.T) {
	provider := newFakeProvider()
	provider.responses["gpt-4o"] = []string{"```markdown\nfresh\n```"}
	cache := newFakeCache()

	tr := New(provider, cache, Config{PrimaryModel: "gpt-4o", FallbackModel: "gpt-4o-mini"})
	pages := writePageFiles(t, 1)

	if _, _, err := tr.Document(context.Background(), "hash", pages); err != nil {
		t.Fatal(err)
	}

	if cache.puts != 1 {
		t.Fatalf("cache puts = %d, want 1", cache.puts)
	}
	if cache.m[cacheKey("hash", 1, "gpt-4o")] != "fresh" {
		t.Errorf("cache entry = %q", cache.m[cacheKey("hash", 1, "gpt-4o")])
	}
}

func TestDocumentMissingPageImage(t *testing.T) {
	provider := newFakeProvider()
	tr := New(provider, nil, Config{PrimaryModel: "gpt-4o"})

	pages := []raster.Page{{Number: 1, Path: filepath.Join(t.TempDir(), "nope.png")}}
	if _, _, err := tr.Document(context.Background(), "hash", pages); err == nil {
		t.Fatal("expected error for missing page image")
	}
}
