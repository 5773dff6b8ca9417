package chat

// Turn is one prior message in the conversation. The caller owns history
// and resends it in full on every request; the gateway keeps no chat state.
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the inbound body of POST /api/v1/chat.
type ChatRequest struct {
	Messages []Turn `json:"messages" validate:"required,min=1,dive"`
}

// QuotaStatus is the body of GET /api/v1/chat/quota.
type QuotaStatus struct {
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"resetAt"`
}
