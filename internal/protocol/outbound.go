package protocol

// Login is the handshake sent once immediately after the connection opens.
type Login struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// NewLogin builds a user-role login envelope.
func NewLogin(userID string) Login {
	return Login{Type: TypeLogin, UserID: userID, Role: RoleUser}
}

// PrivateMessage carries user text to the bot or the assigned agent.
type PrivateMessage struct {
	Type        string `json:"type"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// NewPrivateMessage builds an outbound text envelope.
func NewPrivateMessage(senderID, recipientID, message string) PrivateMessage {
	return PrivateMessage{
		Type:        TypePrivateMessage,
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
	}
}

// FormSubmission carries collected form field values.
type FormSubmission struct {
	Type     string            `json:"type"`
	SenderID string            `json:"senderId"`
	Data     map[string]string `json:"data"`
}

// NewFormSubmission builds an outbound form-submission envelope.
func NewFormSubmission(senderID string, data map[string]string) FormSubmission {
	return FormSubmission{Type: TypeFormSubmission, SenderID: senderID, Data: data}
}

// Ping is the keepalive envelope; the backend answers with a pong frame.
type Ping struct {
	Type string `json:"type"`
}

// NewPing builds a keepalive envelope.
func NewPing() Ping {
	return Ping{Type: TypePing}
}
