package ai

// InboundMessage is a chat message as the web client sends it. The text may
// arrive in either field.
type InboundMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

// BuildMessages prepends the companion system prompt and normalises roles:
// user stays user, anything else becomes assistant. Messages without text
// are dropped.
func BuildMessages(in []InboundMessage) []Message {
	out := make([]Message, 0, len(in)+1)
	out = append(out, Message{Role: "system", Content: companionSystemPrompt})

	for _, m := range in {
		content := m.Content
		if content == "" {
			content = m.Text
		}
		if content == "" {
			continue
		}

		role := "assistant"
		if m.Role == "user" {
			role = "user"
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}
