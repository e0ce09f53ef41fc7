package analysis

// ReliabilityLevel enum
type ReliabilityLevel string

const (
	ReliabilityHigh       ReliabilityLevel = "high"
	ReliabilityMedium     ReliabilityLevel = "medium"
	ReliabilityLow        ReliabilityLevel = "low"
	ReliabilityUnreliable ReliabilityLevel = "unreliable"
)

// ContentPreviewLimit is the number of characters of the original input echoed back in a Result.
const ContentPreviewLimit = 500

// UploadPreviewLimit is the number of extracted characters returned by an upload preview.
const UploadPreviewLimit = 200

// ImageContentLabel stands in for the original content when the subject is an image.
const ImageContentLabel = "Image content"

// Request body for text analysis
type Request struct {
	Content   string `json:"content"`
	FileType  string `json:"file_type,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// Claim is a key-value record describing one extracted claim.
type Claim map[string]any

// Result value object returned for every analysis. Claims and Sources are
// reserved for structured extraction and are always empty for now.
type Result struct {
	Content          string           `json:"content"`
	ReliabilityLevel ReliabilityLevel `json:"reliability_level"`
	Analysis         string           `json:"analysis"`
	Claims           []Claim          `json:"claims"`
	Sources          []string         `json:"sources"`
	Recommendations  []string         `json:"recommendations"`
}

// UploadResponse is returned when an upload is only previewed, not analyzed.
type UploadResponse struct {
	Status         string `json:"status"`
	FileID         string `json:"file_id"`
	FileName       string `json:"file_name"`
	ContentPreview string `json:"content_preview"`
}

// Truncate returns the first n characters (runes) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
