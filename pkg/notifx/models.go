package notifx

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// SMSMessage represents a short text message to be sent.
type SMSMessage struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	SenderID string `json:"sender_id,omitempty"`
}

// SendResult represents the outcome of a single send attempt.
type SendResult struct {
	MessageID string `json:"message_id,omitempty"`
	To        string `json:"to"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
