package domain

// ConnState describes the lifecycle of the one transport connection.
type ConnState int

const (
	// Disconnected means no connection exists and none is being attempted.
	Disconnected ConnState = iota
	// Connecting means a dial is in flight.
	Connecting
	// Open means the connection is established and sends are permitted.
	Open
	// Closed means a previously open connection has dropped; a guarded
	// reconnect may be pending.
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// DefaultBotRecipient is the outbound address used while no agent is assigned.
const DefaultBotRecipient = "bot"

// Session is the one shared mutable resource of a running widget instance:
// the stable user identity, the current agent assignment, and the connection
// state. It has a single writer (the widget event loop).
type Session struct {
	UserID    string
	AgentName string
	State     ConnState
}

// Recipient returns the outbound address for user messages: the assigned
// agent if any, else the default bot address.
func (s *Session) Recipient() string {
	if s.AgentName != "" {
		return s.AgentName
	}
	return DefaultBotRecipient
}

// AgentAssigned reports whether a human agent currently owns the conversation.
func (s *Session) AgentAssigned() bool {
	return s.AgentName != ""
}
