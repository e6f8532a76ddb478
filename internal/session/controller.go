// Package session owns the onboarding transcript and its completion state machine.
package session

import (
	"log"
	"strings"
	"sync"

	"github.com/zhouzirui/onboard/internal/channel"
	"github.com/zhouzirui/onboard/internal/model/chat"
)

// State is the conversation state. Active is the only state that accepts
// user input; Complete is terminal.
type State int

const (
	Active State = iota
	Complete
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// SubmitResult tells the caller what Submit did with the text.
type SubmitResult int

const (
	Accepted SubmitResult = iota
	RejectedEmpty
	RejectedComplete
)

func (r SubmitResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedEmpty:
		return "rejected: empty input"
	case RejectedComplete:
		return "rejected: session complete"
	default:
		return "unknown"
	}
}

// Channel is the transport a Controller drives. *channel.Connection
// satisfies it.
type Channel interface {
	Send(env chat.Envelope) error
	Subscribe(h channel.Handler) (unsubscribe func())
}

// Snapshot is a consistent view of transcript and state.
type Snapshot struct {
	Transcript []chat.Message
	State      State
}

// Update is published to observers after every change and for every
// surfaced transport error.
type Update struct {
	Snapshot Snapshot
	Err      error
}

// Option customizes a Controller.
type Option func(*Controller)

// WithGreeting replaces the seeded first transcript entry.
func WithGreeting(text string) Option {
	return func(c *Controller) { c.greeting = text }
}

// WithObserver registers fn to receive updates. Observers run on the
// goroutine that caused the change and must not call back into Submit.
func WithObserver(fn func(Update)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Controller mediates between user intent and the channel.
//
// A Controller is the single owner of the inbound side of its Channel: it
// subscribes once on construction and unsubscribes on Close. The channel
// itself stays owned by whoever constructed it.
type Controller struct {
	ch        Channel
	greeting  string
	observers []func(Update)

	// sendMu orders outbound sends; mu guards transcript and state.
	sendMu     sync.Mutex
	mu         sync.RWMutex
	transcript []chat.Message
	state      State

	unsubscribe func()
}

// New seeds a fresh Active session and starts consuming inbound events from ch.
func New(ch Channel, opts ...Option) *Controller {
	c := &Controller{
		ch:       ch,
		greeting: chat.Greeting,
		state:    Active,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transcript = []chat.Message{chat.AgentMessage(c.greeting)}
	c.unsubscribe = ch.Subscribe(c.handleEvent)
	return c
}

// Close stops consuming inbound events. It does not close the channel.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// CanSubmit reports whether Submit would accept text right now.
func (c *Controller) CanSubmit(text string) bool {
	return c.gate(text) == Accepted
}

func (c *Controller) gate(text string) SubmitResult {
	if strings.TrimSpace(text) == "" {
		return RejectedEmpty
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == Complete {
		return RejectedComplete
	}
	return Accepted
}

// Submit appends text to the transcript and sends it to the agent.
//
// Empty or whitespace-only text and any text after completion are rejected
// without touching the transcript or the channel. The append is optimistic:
// when the send fails the entry stays and the error is returned and
// published to observers.
func (c *Controller) Submit(text string) (SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return RejectedEmpty, nil
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	if c.state == Complete {
		c.mu.Unlock()
		return RejectedComplete, nil
	}
	c.transcript = append(c.transcript, chat.UserMessage(text))
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(Update{Snapshot: snap})

	if err := c.ch.Send(chat.Envelope{Message: text}); err != nil {
		log.Printf("[session] send failed: %v", err)
		c.publish(Update{Snapshot: c.Snapshot(), Err: err})
		return Accepted, err
	}
	return Accepted, nil
}

// HandleInbound records an agent message and evaluates completion. Both
// happen under one lock so observers never see one without the other.
// Messages after completion are still recorded.
func (c *Controller) HandleInbound(env chat.Envelope) {
	c.mu.Lock()
	c.transcript = append(c.transcript, chat.AgentMessage(env.Message))
	completed := false
	if c.state == Active && strings.Contains(env.Message, chat.Sentinel) {
		c.state = Complete
		completed = true
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if completed {
		log.Printf("[session] onboarding complete after %d messages", len(snap.Transcript))
	}
	c.publish(Update{Snapshot: snap})
}

func (c *Controller) handleEvent(ev channel.Event) {
	if ev.Err != nil {
		log.Printf("[session] channel error: %v", ev.Err)
		c.publish(Update{Snapshot: c.Snapshot(), Err: ev.Err})
		return
	}
	c.HandleInbound(ev.Envelope)
}

// Transcript returns a copy of the transcript in conversational order.
func (c *Controller) Transcript() []chat.Message {
	return c.Snapshot().Transcript
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns transcript and state captured together.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	copied := make([]chat.Message, len(c.transcript))
	copy(copied, c.transcript)
	return Snapshot{Transcript: copied, State: c.state}
}

func (c *Controller) publish(u Update) {
	for _, fn := range c.observers {
		fn(u)
	}
}
