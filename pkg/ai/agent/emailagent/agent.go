package emailagent

import (
	"context"
	"fmt"
	"strings"

	"ai-docrouter-be/internal/pkg/logger"
	"ai-docrouter-be/pkg/ai/inference"
	"ai-docrouter-be/pkg/document"
	"ai-docrouter-be/pkg/memory"
)

const (
	ActionExtractionComplete = "extraction_complete"
	ActionExtractionFallback = "extraction_fallback"

	DefaultSender    = "unknown@example.com"
	DefaultSubject   = "No subject"
	DefaultRecipient = "recipient@example.com"
	DefaultKeyPoint  = "Email content requires manual review"

	IntentInquiry     = "Inquiry"
	IntentRFQ         = "RFQ"
	IntentComplaint   = "Complaint"
	IntentInformation = "Information"
	IntentOther       = "Other"

	UrgencyLow    = "Low"
	UrgencyMedium = "Medium"
	UrgencyHigh   = "High"

	maxPromptChars = 4000
	module         = "EMAIL_AGENT"
)

// Memory is the slice of the shared memory manager the agent writes to.
type Memory interface {
	Write(ctx context.Context, sessionId string, partial document.Fields) memory.Status
	LogActivity(ctx context.Context, component, action, detail string) memory.Status
}

type response struct {
	Sender     *string                `json:"sender" validate:"required"`
	Recipients []string               `json:"recipients"`
	Subject    *string                `json:"subject" validate:"required"`
	Intent     string                 `json:"intent" validate:"required,oneof=Inquiry RFQ Complaint Information Other"`
	Urgency    string                 `json:"urgency" validate:"required,oneof=Low Medium High"`
	KeyPoints  []string               `json:"key_points" validate:"required"`
	CRMFormat  map[string]interface{} `json:"crm_format" validate:"required"`
}

type Agent struct {
	inference *inference.Client
	memory    Memory
	logger    logger.ILogger
}

func New(client *inference.Client, mem Memory, log logger.ILogger) *Agent {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Agent{
		inference: client,
		memory:    mem,
		logger:    log,
	}
}

// Process extracts correspondence metadata from content and records it under
// sessionId. It never fails; free text that is not really an email still
// yields a result from the header scan defaults.
func (a *Agent) Process(ctx context.Context, content, sessionId string) (*document.EmailExtraction, error) {
	result, err := a.extract(ctx, content)
	if err != nil {
		a.logger.Warn(module, "Inference failed, scanning headers", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		result = Fallback(content)
	}

	a.memory.Write(ctx, sessionId, result.MemoryFields())

	action := ActionExtractionComplete
	if result.Fallback {
		action = ActionExtractionFallback
	}
	a.memory.LogActivity(ctx, document.AgentEmail, action, fmt.Sprintf(
		"Sender: %s, Subject: %s, Intent: %s, Urgency: %s",
		result.Sender, result.Subject, result.Intent, result.Urgency))

	return result, nil
}

// Fallback reads the first From: and Subject: header lines, ignoring case.
func Fallback(content string) *document.EmailExtraction {
	sender, subject := "", ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case sender == "" && strings.HasPrefix(lower, "from:"):
			sender = strings.TrimSpace(line[len("from:"):])
		case subject == "" && strings.HasPrefix(lower, "subject:"):
			subject = strings.TrimSpace(line[len("subject:"):])
		}
	}
	if sender == "" {
		sender = DefaultSender
	}
	if subject == "" {
		subject = DefaultSubject
	}

	return &document.EmailExtraction{
		Sender:     sender,
		Recipients: []string{DefaultRecipient},
		Subject:    subject,
		Intent:     IntentOther,
		Urgency:    UrgencyMedium,
		KeyPoints:  []string{DefaultKeyPoint},
		CRMFormat: document.Fields{
			"contact":  sender,
			"subject":  subject,
			"category": "General",
			"priority": UrgencyMedium,
			"summary":  "Processed without AI assistance",
		},
		Fallback: true,
	}
}

func (a *Agent) extract(ctx context.Context, content string) (*document.EmailExtraction, error) {
	body := content
	if r := []rune(body); len(r) > maxPromptChars {
		body = string(r[:maxPromptChars])
	}

	res, err := inference.Infer[response](ctx, a.inference, fmt.Sprintf(`You extract structured data from business emails.

Respond ONLY with a JSON object:
{
  "sender": "email address of the sender",
  "recipients": ["email addresses of recipients"],
  "subject": "subject line",
  "intent": "Inquiry" | "RFQ" | "Complaint" | "Information" | "Other",
  "urgency": "Low" | "Medium" | "High",
  "key_points": ["short bullet points of the content"],
  "crm_format": {a CRM-ready record with contact, category, priority and summary}
}

EMAIL:
%s`, body))
	if err != nil {
		return nil, err
	}

	recipients := res.Recipients
	if len(recipients) == 0 {
		recipients = []string{DefaultRecipient}
	}

	return &document.EmailExtraction{
		Sender:     *res.Sender,
		Recipients: recipients,
		Subject:    *res.Subject,
		Intent:     res.Intent,
		Urgency:    res.Urgency,
		KeyPoints:  res.KeyPoints,
		CRMFormat:  document.Fields(res.CRMFormat),
	}, nil
}
