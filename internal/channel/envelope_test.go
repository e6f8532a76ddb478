package channel

import (
	"errors"
	"testing"

	"github.com/zhouzirui/onboard/internal/model/chat"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"message":"Thanks! Information collected: zip=12345","extra":1}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope err: %v", err)
	}
	if env.Message != "Thanks! Information collected: zip=12345" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestDecodeEnvelopeEmptyMessageIsValid(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"message":""}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope err: %v", err)
	}
	if env.Message != "" {
		t.Fatalf("expected empty message, got %q", env.Message)
	}
}

func TestDecodeEnvelopeRejectsMalformedFrames(t *testing.T) {
	frames := map[string]string{
		"invalid json":   `{"message":`,
		"plain text":     `hello`,
		"missing field":  `{"text":"hi"}`,
		"null message":   `{"message":null}`,
		"number message": `{"message":42}`,
		"array":          `["message"]`,
	}

	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(frame))
			var malformed *MalformedFrameError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedFrameError, got %v", err)
			}
			if string(malformed.Frame) != frame {
				t.Fatalf("error should carry the frame, got %q", malformed.Frame)
			}
		})
	}
}

func TestEncodeEnvelope(t *testing.T) {
	frame, err := EncodeEnvelope(chat.Envelope{Message: `say "hi"`})
	if err != nil {
		t.Fatalf("EncodeEnvelope err: %v", err)
	}
	if string(frame) != `{"message":"say \"hi\""}` {
		t.Fatalf("unexpected frame: %s", frame)
	}
}
