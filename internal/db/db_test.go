package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArtifactStepConstants(t *testing.T) {
	steps := []string{
		StepWebsiteContent,
		StepPageText,
		StepFABAnalysis,
		StepKeywords,
		StepAdVariants,
		StepReport,
	}

	seen := make(map[string]bool)
	for _, step := range steps {
		assert.NotEmpty(t, step, "step constant should not be empty")
		assert.False(t, seen[step], "step constant %q duplicated", step)
		seen[step] = true
	}
}

func TestRunStatusConstants(t *testing.T) {
	assert.Equal(t, "running", RunStatusRunning)
	assert.Equal(t, "completed", RunStatusCompleted)
	assert.Equal(t, "failed", RunStatusFailed)
}

func TestRunType(t *testing.T) {
	run := Run{
		URL:    "https://shop.example.com",
		Domain: "shop.example.com",
		Status: RunStatusRunning,
	}

	assert.Equal(t, "https://shop.example.com", run.URL)
	assert.Equal(t, "shop.example.com", run.Domain)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
}

func TestCachedPage_IsFresh(t *testing.T) {
	now := time.Now()

	fresh := &CachedPage{
		FetchedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(24 * time.Hour),
	}
	assert.True(t, fresh.IsFresh(DefaultPageCacheTTL))

	// Within the expiry window but older than the caller's max age.
	assert.False(t, fresh.IsFresh(30*time.Minute))

	expired := &CachedPage{
		FetchedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(-time.Minute),
	}
	assert.False(t, expired.IsFresh(DefaultPageCacheTTL))
}

func TestHashContent(t *testing.T) {
	a := HashContent("<html>page</html>")
	b := HashContent("<html>page</html>")
	c := HashContent("<html>other</html>")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
