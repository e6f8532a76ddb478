package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/onboard/internal/analysis/validate"
	"github.com/zhouzirui/onboard/internal/config"
	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

// Extractor asks the chat model to validate and normalize one onboarding answer.
type Extractor struct {
	chatModel model.BaseChatModel
	prompts   *PromptManager
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates an Extractor backed by the configured Ark model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Extractor, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewExtractor(ctx, chatModel)
}

// NewExtractor compiles the extraction chain around chatModel.
func NewExtractor(ctx context.Context, chatModel model.BaseChatModel) (*Extractor, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile extraction chain: %w", err)
	}

	return &Extractor{
		chatModel: chatModel,
		prompts:   NewPromptManager(),
		chain:     runnable,
	}, nil
}

// Extract runs the chain for the profile's current step.
func (e *Extractor) Extract(ctx context.Context, profile onboarding.Profile, input string) (validate.Result, error) {
	system, err := e.prompts.BuildSystemPrompt(profile.Step, profile)
	if err != nil {
		return validate.Result{}, err
	}

	msg, err := e.chain.Invoke(ctx, map[string]any{
		"system": system,
		"query":  e.prompts.BuildQuery(profile.Step, input),
	})
	if err != nil {
		return validate.Result{}, fmt.Errorf("failed to run extraction chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return validate.Result{}, fmt.Errorf("empty model output")
	}

	payload, err := parseExtractorOutput(msg.Content)
	if err != nil {
		return validate.Result{}, fmt.Errorf("parse model output: %w", err)
	}

	log.Printf("[ai] step=%s valid=%v", profile.Step, payload.Valid)
	return validate.Result{
		Valid:   payload.Valid,
		Value:   strings.TrimSpace(payload.Value.String()),
		Message: strings.TrimSpace(payload.Message),
	}, nil
}

// parseExtractorOutput 截取模型输出中最外层的 JSON 对象并解析。
func parseExtractorOutput(content string) (*extractorPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &extractorPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	if payload.Message == "" {
		return nil, fmt.Errorf("missing message field")
	}
	return payload, nil
}

type extractorPayload struct {
	Message string    `json:"message"`
	Valid   bool      `json:"valid"`
	Value   looseText `json:"value"`
}

// looseText accepts a JSON string, number, or bool. Models often answer
// "days": 5 instead of "5".
type looseText string

func (t *looseText) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = looseText(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = looseText(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*t = "yes"
		} else {
			*t = "no"
		}
		return nil
	}
	return fmt.Errorf("unsupported value %s", raw)
}

func (t looseText) String() string {
	return string(t)
}
