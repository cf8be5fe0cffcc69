package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents one website analysis run
type Run struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	Domain      string     `json:"domain"`
	ProductName string     `json:"product_name,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact step constants, one per pipeline stage output
const (
	StepWebsiteContent = "website_content"
	StepPageText       = "page_text"
	StepFABAnalysis    = "fab_analysis"
	StepKeywords       = "keywords"
	StepAdVariants     = "ad_variants"
	StepReport         = "report"
)

// Artifact category constants
const (
	CategoryIngestion = "ingestion"
	CategoryAnalysis  = "analysis"
	CategoryKeywords  = "keywords"
	CategoryDrafting  = "drafting"
	CategoryExport    = "export"
)
