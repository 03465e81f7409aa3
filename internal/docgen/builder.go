package docgen

import checklist "github.com/gregori0101/infrasites-sub001/internal/checklist/domain"

// Builder adapts the package-level renderers to the document builder
// interface consumed by the submission pipeline.
type Builder struct{}

// BuildPDF renders the PDF artifact.
func (Builder) BuildPDF(rec *checklist.ChecklistRecord) ([]byte, error) {
	return BuildChecklistPDF(rec)
}

// BuildXLSX renders the XLSX artifact.
func (Builder) BuildXLSX(rec *checklist.ChecklistRecord) ([]byte, error) {
	return BuildChecklistXLSX(rec)
}
