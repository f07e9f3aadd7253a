package entity

// Outcome labels how an extraction request finished
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeDegradedSuccess Outcome = "degraded_success"
)

// Input sources accepted by the service
const (
	SourceFile  = "file"
	SourcePDF   = "pdf"
	SourceImage = "image"
	SourceText  = "text"
	SourceVoice = "voice"
	SourceURL   = "url"
)

// ExtractionResult is the envelope returned for every completed request.
// Document is nil only when Outcome is OutcomeDegradedSuccess.
type ExtractionResult struct {
	Document   *InvoiceDocument `json:"document"`
	RawText    string           `json:"raw_text"`
	Confidence float64          `json:"confidence"`
	EngineUsed string           `json:"engine_used"`
	ModelUsed  string           `json:"model_used"`
	ElapsedMS  int64            `json:"elapsed_ms"`

	Outcome            Outcome `json:"outcome"`
	NormalizationError string  `json:"normalization_error,omitempty"`
	ModelReply         string  `json:"model_reply,omitempty"`
}

// Degraded reports whether the model reply could not be normalized
func (r *ExtractionResult) Degraded() bool {
	return r.Outcome == OutcomeDegradedSuccess
}

// Acquired is the text produced by input acquisition
type Acquired struct {
	Text       string
	Confidence float64
	Source     string
}

// RecognizedText is the OCR output for one image. Confidence is on the
// engine's 0-100 scale.
type RecognizedText struct {
	Text       string
	Confidence float64
}

// RemoteDocument is a file downloaded from a source URL
type RemoteDocument struct {
	Data        []byte
	ContentType string
}
