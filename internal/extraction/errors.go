package extraction

import "fmt"

// ErrorKind classifies extraction failures
type ErrorKind string

// Extraction failure kinds
const (
	// KindUnsupportedFormat means the file extension is not recognized
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	// KindCorruptFile means the container could not be opened or parsed
	KindCorruptFile ErrorKind = "corrupt_file"
	// KindEmptyDocument means the document parsed but yielded no content
	KindEmptyDocument ErrorKind = "empty_document"
)

// ExtractionError represents a failure to normalize a source document
type ExtractionError struct {
	Kind    ErrorKind
	Path    string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed (%s) for %s: %s: %v", e.Kind, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed (%s) for %s: %s", e.Kind, e.Path, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
