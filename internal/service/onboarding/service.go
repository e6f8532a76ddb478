// Package onboarding drives the agent side of the onboarding conversation:
// one question per step, validated answers, and a summary at the end.
package onboarding

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zhouzirui/onboard/internal/analysis/validate"
	model "github.com/zhouzirui/onboard/internal/model/onboarding"
	"github.com/zhouzirui/onboard/internal/store"
)

// Extractor validates an answer for the profile's current step. The LLM
// extractor in service/ai satisfies it.
type Extractor interface {
	Extract(ctx context.Context, profile model.Profile, input string) (validate.Result, error)
}

// Service 负责创建会话并持久化每一轮对话。
type Service struct {
	repo      store.Repository
	extractor Extractor
}

// NewService creates the conversation service. A nil extractor uses the
// rule validators only.
func NewService(repo store.Repository, extractor Extractor) *Service {
	return &Service{repo: repo, extractor: extractor}
}

// Enabled 返回是否启用了大模型抽取。
func (s *Service) Enabled() bool {
	return s != nil && s.extractor != nil
}

// Start provisions a new session.
func (s *Service) Start(ctx context.Context) (*Conversation, error) {
	session, err := s.repo.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Printf("[onboarding] session started id=%s", session.ID)
	return &Conversation{svc: s, session: session, profile: model.NewProfile()}, nil
}

// Conversation is one connected client's onboarding run.
type Conversation struct {
	svc *Service

	mu      sync.Mutex
	session model.Session
	profile model.Profile
}

// ID returns the session identifier.
func (c *Conversation) ID() string {
	return c.session.ID
}

// Profile returns a copy of the collected answers.
func (c *Conversation) Profile() model.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.profile
	p.Vehicles = append([]model.Vehicle(nil), c.profile.Vehicles...)
	return p
}

// Reply records input, validates it for the current step, and returns the
// agent's answer. Exactly one reply is produced per input.
func (c *Conversation) Reply(ctx context.Context, input string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record(ctx, model.RoleUser, input); err != nil {
		return "", err
	}

	if c.profile.Complete() {
		return AlreadyComplete, c.record(ctx, model.RoleAssistant, AlreadyComplete)
	}

	result, fromModel := c.svc.extract(ctx, c.profile, input)
	if !result.Valid {
		return result.Message, c.record(ctx, model.RoleAssistant, result.Message)
	}

	next := c.profile
	next.Vehicles = append([]model.Vehicle(nil), c.profile.Vehicles...)
	finished := advance(&next, result.Value)

	if finished != nil {
		if finished.CreatedAt.IsZero() {
			finished.CreatedAt = time.Now().UTC()
		}
		if err := c.svc.repo.SaveVehicle(ctx, c.session.ID, *finished); err != nil {
			return "", fmt.Errorf("save vehicle: %w", err)
		}
	}

	session := c.session
	applyProfile(&session, next)
	if err := c.svc.repo.UpdateSession(ctx, session); err != nil {
		return "", fmt.Errorf("update session: %w", err)
	}
	c.session = session
	c.profile = next

	var reply string
	switch {
	case next.Complete():
		reply = Summary(next)
		log.Printf("[onboarding] session complete id=%s vehicles=%d", session.ID, len(next.Vehicles))
	case fromModel && result.Message != "":
		reply = result.Message
	default:
		reply = Question(next.Step)
	}

	return reply, c.record(ctx, model.RoleAssistant, reply)
}

func (c *Conversation) record(ctx context.Context, role model.Role, content string) error {
	err := c.svc.repo.SaveRecord(ctx, model.Record{
		SessionID: c.session.ID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("save %s record: %w", role, err)
	}
	return nil
}

// extract prefers the model and falls back to the rule validators when the
// model is unavailable, fails, or returns a value outside the step's vocabulary.
func (s *Service) extract(ctx context.Context, profile model.Profile, input string) (validate.Result, bool) {
	if s.extractor != nil {
		result, err := s.extractor.Extract(ctx, profile, input)
		switch {
		case err != nil:
			log.Printf("[onboarding] extractor failed, use fallback: %v", err)
		case !result.Valid && result.Message != "":
			return result, true
		case result.Valid:
			if value, ok := validate.Canonical(profile.Step, result.Value); ok {
				result.Value = value
				return result, true
			}
			log.Printf("[onboarding] extractor value %q rejected for step=%s, use fallback", result.Value, profile.Step)
		}
	}
	return validate.Check(profile.Step, input), false
}

func applyProfile(session *model.Session, p model.Profile) {
	session.CurrentStep = p.Step
	session.ZipCode = p.ZipCode
	session.FullName = p.FullName
	session.Email = p.Email
	session.LicenseType = p.LicenseType
	session.LicenseStatus = p.LicenseStatus

	if p.Complete() && !session.IsComplete {
		now := time.Now().UTC()
		session.IsComplete = true
		session.CompletedAt = &now
	}
}
