// Package export writes analysis results and ad variants to spreadsheet
// reports.
package export

import "fmt"

// WriteError represents a failure building or saving a report workbook
type WriteError struct {
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export error: %s", e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
