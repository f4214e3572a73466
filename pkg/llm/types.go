package llm

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionHandle carries the opaque identifiers a session-aware backend uses
// to resume a conversation. Stateless backends always return the zero value.
type SessionHandle struct {
	SessionID       string `json:"session_id,omitempty"`
	ParentMessageID string `json:"parent_message_id,omitempty"`
}

// IsZero reports whether the handle carries no identifiers.
func (h SessionHandle) IsZero() bool {
	return h.SessionID == "" && h.ParentMessageID == ""
}

// Response represents a complete reply from a backend.
type Response struct {
	Text   string        `json:"text"`
	Handle SessionHandle `json:"handle"`
	Usage  Usage         `json:"usage"`
}

// Usage tracks token consumption for a request/response pair.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
