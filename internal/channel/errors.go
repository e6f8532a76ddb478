package channel

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	// ErrNotReady is returned by Send before the connection is open or after it closed.
	ErrNotReady = errors.New("channel: connection not ready")
	// ErrAlreadyOpened is returned when Open is called on a connection that was already used.
	ErrAlreadyOpened = errors.New("channel: connection already opened")
)

// ConnectionError reports a transport failure: dial, read or write.
type ConnectionError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("channel: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MalformedFrameError reports an inbound frame that is not a valid envelope.
// The frame is dropped; the connection stays usable.
type MalformedFrameError struct {
	Frame []byte
	Err   error
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("channel: malformed frame %q: %v", truncate(e.Frame, 64), e.Err)
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// IsNormalClosure 判断读取错误是否来自对端的正常关闭。
func IsNormalClosure(err error) bool {
	if err == nil {
		return false
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func truncate(frame []byte, limit int) string {
	if len(frame) <= limit {
		return string(frame)
	}
	return string(frame[:limit]) + "..."
}
