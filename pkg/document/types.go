package document

import "errors"

// Format is the structural category of an input document.
type Format string

const (
	FormatJSON  Format = "JSON"
	FormatEmail Format = "Email"
	FormatPDF   Format = "PDF"
	FormatText  Format = "Text"
)

// Intent is the business purpose of an input document.
type Intent string

const (
	IntentInvoice    Intent = "Invoice"
	IntentRFQ        Intent = "RFQ"
	IntentComplaint  Intent = "Complaint"
	IntentRegulation Intent = "Regulation"
	IntentQuery      Intent = "Query"
	IntentOther      Intent = "Other"
)

// Agent names, also used as the "agent" value in session records and as audit components.
const (
	AgentClassifier   = "Classifier"
	AgentJSON         = "JSON"
	AgentEmail        = "Email"
	AgentOrchestrator = "Orchestrator"
)

// Session record keys.
const (
	KeyTimestamp          = "timestamp"
	KeyClassification     = "classification"
	KeyAgent              = "agent"
	KeyExtractedFields    = "extracted_fields"
	KeyStandardizedFormat = "standardized_format"
	KeySender             = "sender"
	KeySubject            = "subject"
	KeyIntent             = "intent"
	KeyUrgency            = "urgency"
	KeyKeyPoints          = "key_points"
)

var (
	// ErrMalformedInput means the content does not parse as the format it was routed for.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedFormat means no agent is registered for the classified format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Fields is an open, JSON-like mapping whose shape is decided at runtime.
type Fields map[string]interface{}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns a new mapping holding every key of f, overwritten by every key of partial.
// It is a key-level overwrite; nested values are replaced, never merged.
func (f Fields) Merge(partial Fields) Fields {
	out := make(Fields, len(f)+len(partial))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Classification is the classifier output. Reasoning is transient and never persisted.
type Classification struct {
	Format     Format  `json:"format"`
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Fallback   bool    `json:"fallback"`
}

// MemoryFields is the persisted shape of a classification.
func (c Classification) MemoryFields() Fields {
	return Fields{
		"format":     string(c.Format),
		"intent":     string(c.Intent),
		"confidence": c.Confidence,
	}
}

// Envelope is the strongly typed outer shape of an agent's extraction result.
type Envelope interface {
	AgentName() string
	// MemoryFields is the partial mapping merged into the session record.
	MemoryFields() Fields
	// Degraded reports whether the deterministic fallback produced the result.
	Degraded() bool
}

// JSONExtraction is produced by the JSON agent.
type JSONExtraction struct {
	ExtractedFields    Fields   `json:"extracted_fields"`
	MissingFields      []string `json:"missing_fields"`
	Anomalies          []string `json:"anomalies"`
	StandardizedFormat Fields   `json:"standardized_format"`
	Fallback           bool     `json:"fallback"`
}

func (e *JSONExtraction) AgentName() string { return AgentJSON }
func (e *JSONExtraction) Degraded() bool    { return e.Fallback }

func (e *JSONExtraction) MemoryFields() Fields {
	return Fields{
		KeyAgent:              AgentJSON,
		KeyExtractedFields:    map[string]interface{}(e.ExtractedFields),
		KeyStandardizedFormat: map[string]interface{}(e.StandardizedFormat),
	}
}

// EmailExtraction is produced by the Email agent.
type EmailExtraction struct {
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Intent     string   `json:"intent"`
	Urgency    string   `json:"urgency"`
	KeyPoints  []string `json:"key_points"`
	CRMFormat  Fields   `json:"crm_format"`
	Fallback   bool     `json:"fallback"`
}

func (e *EmailExtraction) AgentName() string { return AgentEmail }
func (e *EmailExtraction) Degraded() bool    { return e.Fallback }

func (e *EmailExtraction) MemoryFields() Fields {
	return Fields{
		KeyAgent:     AgentEmail,
		KeySender:    e.Sender,
		KeySubject:   e.Subject,
		KeyIntent:    e.Intent,
		KeyUrgency:   e.Urgency,
		KeyKeyPoints: append([]string(nil), e.KeyPoints...),
	}
}
