package testutils

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/areknoster/hypert"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/genai"

	"github.com/datar-psa/answereval/gemini"
	"github.com/datar-psa/answereval/openai"
)

// ShouldUpdate returns true if tests should update cached HTTP responses
// Set UPDATE_TESTS=true environment variable to update cached responses
func ShouldUpdate() bool {
	return os.Getenv("UPDATE_TESTS") == "true"
}

// HypertClientConfig configures hypert client creation
type HypertClientConfig struct {
	TestDataDir string
	SubDir      string // Optional subdirectory for organizing test data
}

// SkipWithoutRecordings skips the test when it would replay from an empty
// directory. Recording mode always runs.
func SkipWithoutRecordings(t *testing.T, dir string) {
	t.Helper()
	if ShouldUpdate() {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Skipf("no recorded responses in %s; run with UPDATE_TESTS=true to record", dir)
	}
}

func (c HypertClientConfig) dir() string {
	if c.SubDir != "" {
		return filepath.Join(c.TestDataDir, c.SubDir)
	}
	return c.TestDataDir
}

func newRecordingClient(t *testing.T, config HypertClientConfig) *http.Client {
	testDataDir := config.dir()
	SkipWithoutRecordings(t, testDataDir)

	namingScheme, err := hypert.NewContentHashNamingScheme(testDataDir)
	if err != nil {
		t.Fatalf("failed to create naming scheme: %v", err)
	}

	return hypert.TestClient(t, ShouldUpdate(),
		hypert.WithNamingScheme(namingScheme),
		hypert.WithRequestValidator(hypert.ComposedRequestValidator(
			hypert.PathValidator(),
			hypert.QueryParamsValidator(),
			hypert.MethodValidator(),
		)),
	)
}

// NewHypertClient creates a new hypert client for caching HTTP requests
// This is useful for integration tests that make external API calls
func NewHypertClient(t *testing.T, config HypertClientConfig) *http.Client {
	hypertClient := newRecordingClient(t, config)

	// If we're in record mode, wrap with OAuth2 authentication
	if ShouldUpdate() {
		ctx := context.Background()
		creds, err := google.FindDefaultCredentials(ctx)
		if err != nil {
			t.Fatalf("failed to get default credentials: %v", err)
		}
		return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, hypertClient), creds.TokenSource)
	}

	return hypertClient
}

// GeminiTestConfig configures Gemini client creation for tests
type GeminiTestConfig struct {
	Project  string
	Location string
	SubDir   string // Subdirectory for hypert test data
}

// DefaultGeminiTestConfig returns a default configuration for Gemini testing
func DefaultGeminiTestConfig(subDir string) GeminiTestConfig {
	return GeminiTestConfig{
		Project:  os.Getenv("GOOGLE_PROJECT_ID"),
		Location: os.Getenv("GOOGLE_REGION"),
		SubDir:   subDir,
	}
}

// NewGeminiClient creates a new Gemini client for testing with hypert caching
func NewGeminiClient(t *testing.T, config GeminiTestConfig) *genai.Client {
	ctx := context.Background()

	// Create hypert client for caching
	hypertClient := NewHypertClient(t, HypertClientConfig{
		TestDataDir: "testdata",
		SubDir:      config.SubDir,
	})

	// Create Gemini client
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:    genai.BackendVertexAI,
		Project:    config.Project,
		Location:   config.Location,
		HTTPClient: hypertClient,
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}

	return genaiClient
}

// NewGeminiGenerator creates a new Gemini generator for testing
func NewGeminiGenerator(t *testing.T, config GeminiTestConfig, modelName string) *gemini.Generator {
	genaiClient := NewGeminiClient(t, config)
	return gemini.NewGenerator(genaiClient, modelName)
}

// NewGeminiEmbedder creates a new Gemini embedder for testing
func NewGeminiEmbedder(t *testing.T, config GeminiTestConfig, modelName string) *gemini.Embedder {
	genaiClient := NewGeminiClient(t, config)
	return gemini.NewEmbedder(genaiClient, modelName)
}

// OpenAITestConfig configures OpenAI client creation for tests
type OpenAITestConfig struct {
	APIKey string
	Model  string
	SubDir string // Subdirectory for hypert test data
}

// DefaultOpenAITestConfig returns a default configuration for OpenAI testing.
// Replayed requests never reach the API, so a placeholder key is used outside record mode.
func DefaultOpenAITestConfig(subDir string) OpenAITestConfig {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		key = "sk-replay"
	}
	return OpenAITestConfig{
		APIKey: key,
		Model:  openai.DefaultModel,
		SubDir: subDir,
	}
}

// NewOpenAIClient creates a go-openai client whose HTTP traffic goes through hypert
func NewOpenAIClient(t *testing.T, config OpenAITestConfig) *goopenai.Client {
	hypertClient := newRecordingClient(t, HypertClientConfig{
		TestDataDir: "testdata",
		SubDir:      config.SubDir,
	})

	clientConfig := goopenai.DefaultConfig(config.APIKey)
	clientConfig.HTTPClient = hypertClient
	return goopenai.NewClientWithConfig(clientConfig)
}

// NewOpenAIGenerator creates a new OpenAI generator for testing
func NewOpenAIGenerator(t *testing.T, config OpenAITestConfig) *openai.Generator {
	return openai.NewGenerator(NewOpenAIClient(t, config), config.Model, zerolog.Nop())
}

// NewOpenAIEmbedder creates a new OpenAI embedder for testing
func NewOpenAIEmbedder(t *testing.T, config OpenAITestConfig) *openai.Embedder {
	return openai.NewEmbedder(NewOpenAIClient(t, config), "")
}
