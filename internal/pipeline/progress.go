package pipeline

import (
	"github.com/google/uuid"

	"github.com/akuzmenko/adsmith/internal/db"
)

// ProgressEvent describes one pipeline stage. Every run emits one event
// per stage in order, with Err set on the stage that failed; skipped
// stages still emit so a consumer always sees the full sequence.
type ProgressEvent struct {
	Step       int    `json:"step"`
	TotalSteps int    `json:"total_steps"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	RunID      string `json:"run_id,omitempty"`
	Content    any    `json:"content,omitempty"`
	Err        error  `json:"-"`
}

// ProgressCallback receives progress events during a run. Callbacks run
// on the pipeline goroutine and must not block.
type ProgressCallback func(event ProgressEvent)

// stage names double as artifact step keys, so a progress stream and
// the persisted artifacts of a run line up one to one.
type stageInfo struct {
	name     string
	category string
}

var stages = []stageInfo{
	{db.StepWebsiteContent, db.CategoryIngestion},
	{db.StepPageText, db.CategoryIngestion},
	{db.StepFABAnalysis, db.CategoryAnalysis},
	{db.StepKeywords, db.CategoryKeywords},
	{db.StepAdVariants, db.CategoryDrafting},
	{db.StepReport, db.CategoryExport},
}

// TotalSteps is the number of stages reported in progress events.
var TotalSteps = len(stages)

func stageIndex(name string) int {
	for i, s := range stages {
		if s.name == name {
			return i
		}
	}
	return 0
}

// stepNumber is the 1-based position of a stage, for "Step N/M" banners.
func stepNumber(name string) int {
	return stageIndex(name) + 1
}

func emitProgress(opts RunOptions, runID uuid.UUID, stepName, message string, content any, err error) {
	if opts.Progress == nil {
		return
	}
	idx := stageIndex(stepName)
	event := ProgressEvent{
		Step:       idx + 1,
		TotalSteps: TotalSteps,
		Name:       stepName,
		Category:   stages[idx].category,
		Message:    message,
		Content:    content,
		Err:        err,
	}
	if runID != uuid.Nil {
		event.RunID = runID.String()
	}
	opts.Progress(event)
}
