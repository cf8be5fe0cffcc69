package pipeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akuzmenko/adsmith/internal/db"
)

func TestStages_CoverEveryStepConstant(t *testing.T) {
	want := []string{
		db.StepWebsiteContent,
		db.StepPageText,
		db.StepFABAnalysis,
		db.StepKeywords,
		db.StepAdVariants,
		db.StepReport,
	}
	require.Len(t, stages, len(want))
	for i, name := range want {
		assert.Equal(t, name, stages[i].name)
		assert.NotEmpty(t, stages[i].category)
	}
	assert.Equal(t, len(want), TotalSteps)
}

func TestStepNumber(t *testing.T) {
	assert.Equal(t, 1, stepNumber(db.StepWebsiteContent))
	assert.Equal(t, 3, stepNumber(db.StepFABAnalysis))
	assert.Equal(t, TotalSteps, stepNumber(db.StepReport))
	assert.Equal(t, 1, stepNumber("no-such-stage"), "unknown stages fall back to the first")
}

func TestEmitProgress(t *testing.T) {
	var got []ProgressEvent
	opts := RunOptions{Progress: func(e ProgressEvent) { got = append(got, e) }}

	runID := uuid.New()
	emitProgress(opts, runID, db.StepKeywords, "Keyword candidates ready", []string{"a", "b"}, nil)
	emitProgress(opts, uuid.Nil, db.StepWebsiteContent, "Fetching page content", nil, nil)

	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Step)
	assert.Equal(t, TotalSteps, got[0].TotalSteps)
	assert.Equal(t, db.CategoryKeywords, got[0].Category)
	assert.Equal(t, runID.String(), got[0].RunID)
	assert.Equal(t, []string{"a", "b"}, got[0].Content)

	assert.Equal(t, 1, got[1].Step)
	assert.Empty(t, got[1].RunID, "nil run IDs are omitted")
}

func TestEmitProgress_NilCallback(t *testing.T) {
	// Must not panic without a callback.
	emitProgress(RunOptions{}, uuid.Nil, db.StepReport, "Report written", nil, nil)
}
