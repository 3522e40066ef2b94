package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/facultyhub/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "data", cfg.Sources.Dir)
	assert.Equal(t, ".facultyhub_index", cfg.Index.Path)
	assert.Equal(t, ai.ProviderTFIDF, cfg.AI.Provider)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 5, cfg.Outreach.FollowupDays)
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facultyhub.yaml")
	content := `
sources:
  dir: scraped
ai:
  provider: gemini
retrieval:
  top_k: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scraped", cfg.Sources.Dir)
	assert.Equal(t, 4, cfg.Sources.Workers)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "GEMINI_API_KEY", cfg.AI.APIKeyEnv)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 32, cfg.Index.BatchSize)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Sources.Colleges = map[string]string{"iitk": "IIT Kanpur"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("FACULTYHUB_TEST_KEY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FACULTYHUB_TEST_KEY") })

	require.NoError(t, LoadEnv(envPath, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("FACULTYHUB_TEST_KEY"))
}

func TestAIOptions(t *testing.T) {
	t.Setenv("FACULTYHUB_GEMINI_KEY", "secret")

	section := AIConfig{
		Provider:       ai.ProviderGemini,
		APIKeyEnv:      "FACULTYHUB_GEMINI_KEY",
		EmbeddingModel: "embedding-001",
		Temperature:    0.3,
		TimeoutSecs:    12,
	}
	cfg := ai.NewConfig(section.AIOptions()...)

	assert.Equal(t, ai.ProviderGemini, cfg.Provider)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "embedding-001", cfg.EmbeddingModel)
	assert.Equal(t, "gemini-1.5-flash", cfg.GenerationModel)
	assert.Equal(t, 12*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestReminderEvery(t *testing.T) {
	assert.Equal(t, 30*time.Minute, (&OutreachConfig{ReminderInterval: "30m"}).ReminderEvery())
	assert.Equal(t, time.Hour, (&OutreachConfig{ReminderInterval: "soon"}).ReminderEvery())
}
