package models

// Chat turn roles
const (
	TurnSystem    = "system"
	TurnUser      = "user"
	TurnAssistant = "assistant"
)

// ChatTurn is one message of a conversation. Any role other than
// system or user is treated as the persona speaking.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a stateless conversation request; the client resubmits
// the whole transcript on every call.
type ChatRequest struct {
	ScenarioID  ScenarioID `json:"scenario_id"`
	PartnerRole string     `json:"partner_role,omitempty"`
	Messages    []ChatTurn `json:"messages"`
}

// Response statuses shared by chat and evaluation envelopes
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusError          = "error"
)

// ChatResponse is the persona reply envelope
type ChatResponse struct {
	Reply  string `json:"reply"`
	Status string `json:"status"`
}

// ChatErrorResponse is returned when the upstream model call fails
func ChatErrorResponse() ChatResponse {
	return ChatResponse{Reply: "Error", Status: StatusError}
}
