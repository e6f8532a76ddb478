package chat

// Message is one transcript entry as rendered by the client.
type Message struct {
	Text       string `json:"text"`
	IsFromUser bool   `json:"isFromUser"`
}

// UserMessage builds a transcript entry typed by the local user.
func UserMessage(text string) Message {
	return Message{Text: text, IsFromUser: true}
}

// AgentMessage builds a transcript entry received from the remote agent.
func AgentMessage(text string) Message {
	return Message{Text: text, IsFromUser: false}
}
