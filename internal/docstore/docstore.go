// Package docstore answers read-side questions about uploaded onboarding
// documents: which of the required document types an employee has uploaded.
// Uploads themselves land in per-employee folders (local disk or an S3
// bucket) managed elsewhere; this package only inspects them.
package docstore

import "context"

// Required document types and the filename substrings that identify them.
var docKeywords = map[string][]string{
	"aadhaar":    {"aadhaar"},
	"pan":        {"pan"},
	"bank_proof": {"bank", "account"},
	"nda":        {"nda"},
}

const (
	StatusUploaded       = "uploaded"
	StatusMissing        = "missing"
	StatusFolderNotFound = "folder not found"
)

// Store inspects an employee's document folder.
type Store interface {
	// DocumentStatus maps each required document type to "uploaded",
	// "missing", or "folder not found". It does not return an error for an
	// absent folder; that is a normal pre-upload state.
	DocumentStatus(ctx context.Context, folder string) (map[string]string, error)

	// ListDocuments returns the PDF filenames in the employee's folder.
	ListDocuments(ctx context.Context, folder string) ([]string, error)
}

// classify maps a list of uploaded filenames onto per-doc-type statuses.
func classify(files []string) map[string]string {
	status := make(map[string]string, len(docKeywords))
	for docType, substrings := range docKeywords {
		status[docType] = StatusMissing
		for _, f := range files {
			if containsAny(f, substrings) {
				status[docType] = StatusUploaded
				break
			}
		}
	}
	return status
}

// allNotFound is the status map for a missing folder.
func allNotFound() map[string]string {
	status := make(map[string]string, len(docKeywords))
	for docType := range docKeywords {
		status[docType] = StatusFolderNotFound
	}
	return status
}
