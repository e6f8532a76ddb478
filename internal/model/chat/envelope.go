package chat

// Sentinel marks the agent reply that ends an onboarding conversation.
// It travels inside ordinary chat text; there is no structured flag.
const Sentinel = "Information collected:"

// Greeting seeds every new transcript.
const Greeting = "Hi! I'm going to be helping you get onboarded today. Let's start off with your ZipCode"

// ConnectedNotice is the first frame the agent sends after accepting a connection.
const ConnectedNotice = "Connection Established"

// Envelope is the wire form exchanged in both directions.
type Envelope struct {
	Message string `json:"message"`
}
