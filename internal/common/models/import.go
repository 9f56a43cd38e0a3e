package models

import "fmt"

// ImportResult summarizes a batch import. Failed rows never abort the batch.
type ImportResult struct {
	TotalRecords      int      `json:"total"`
	SuccessfulImports int      `json:"succeeded"`
	FailedImports     int      `json:"failed"`
	Errors            []string `json:"errors"`
}

func NewImportResult() *ImportResult {
	return &ImportResult{Errors: []string{}}
}

// Record counts one row; err nil means the row was committed.
func (r *ImportResult) Record(line int, err error) {
	r.TotalRecords++
	if err == nil {
		r.SuccessfulImports++
		return
	}
	r.FailedImports++
	r.Errors = append(r.Errors, fmt.Sprintf("Line %d: %s", line, err.Error()))
}
