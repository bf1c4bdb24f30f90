package dto

import "github.com/aqwal-app/aqwal/internal/app"

// ImportSnapshotResponse is the external shape of the import workflow
// state. Candidates is truncated to the preview limit; Total is the
// full staged count.
type ImportSnapshotResponse struct {
	State      string          `json:"state"`
	Filename   string          `json:"filename,omitempty"`
	Candidates []QuoteResponse `json:"candidates"`
	Total      int             `json:"total"`
}

// ImportCommitResponse reports a finished commit.
type ImportCommitResponse struct {
	Committed int    `json:"committed"`
	Filename  string `json:"filename,omitempty"`
}

// NewImportSnapshotResponse converts an import snapshot.
func NewImportSnapshotResponse(snap app.ImportSnapshot) ImportSnapshotResponse {
	candidates := make([]QuoteResponse, 0, len(snap.Candidates))
	for _, q := range snap.Candidates {
		candidates = append(candidates, NewQuoteResponse(q))
	}

	return ImportSnapshotResponse{
		State:      string(snap.State),
		Filename:   snap.Filename,
		Candidates: candidates,
		Total:      snap.Total,
	}
}

// NewImportCommitResponse converts an import report.
func NewImportCommitResponse(report app.ImportReport) ImportCommitResponse {
	return ImportCommitResponse{
		Committed: report.Committed,
		Filename:  report.Filename,
	}
}
