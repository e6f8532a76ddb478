package channel

import (
	"encoding/json"
	"errors"

	"github.com/zhouzirui/onboard/internal/model/chat"
)

var errMissingMessage = errors.New("missing message field")

// wireEnvelope detects an absent "message" field, which chat.Envelope cannot.
type wireEnvelope struct {
	Message *string `json:"message"`
}

// EncodeEnvelope serializes env to its JSON text form.
func EncodeEnvelope(env chat.Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeEnvelope parses a frame into an envelope. Unknown fields are ignored.
// Any failure is a *MalformedFrameError.
func DecodeEnvelope(frame []byte) (chat.Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(frame, &wire); err != nil {
		return chat.Envelope{}, &MalformedFrameError{Frame: frame, Err: err}
	}
	if wire.Message == nil {
		return chat.Envelope{}, &MalformedFrameError{Frame: frame, Err: errMissingMessage}
	}
	return chat.Envelope{Message: *wire.Message}, nil
}
