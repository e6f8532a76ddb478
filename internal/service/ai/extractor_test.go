package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

type scriptedModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.seen = input
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func TestExtractParsesModelJSON(t *testing.T) {
	fake := &scriptedModel{reply: "Sure:\n{\"message\": \"Perfect! What's your full name?\", \"valid\": true, \"value\": \"12345\"}"}
	ex, err := NewExtractor(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewExtractor err: %v", err)
	}

	res, err := ex.Extract(context.Background(), onboarding.NewProfile(), "12345")
	if err != nil {
		t.Fatalf("Extract err: %v", err)
	}
	if !res.Valid || res.Value != "12345" || res.Message != "Perfect! What's your full name?" {
		t.Fatalf("unexpected result %+v", res)
	}

	if len(fake.seen) != 2 {
		t.Fatalf("expected system + user message, got %d", len(fake.seen))
	}
	if !strings.Contains(fake.seen[0].Content, "ZIP code validator") {
		t.Fatalf("system prompt should be the zip template, got %q", fake.seen[0].Content)
	}
	if fake.seen[1].Content != "Validate this ZIP code: 12345" {
		t.Fatalf("unexpected query %q", fake.seen[1].Content)
	}
}

func TestExtractAcceptsNumericValue(t *testing.T) {
	fake := &scriptedModel{reply: `{"message": "How many miles one-way?", "valid": true, "value": 5}`}
	ex, err := NewExtractor(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewExtractor err: %v", err)
	}

	profile := onboarding.Profile{Step: onboarding.StepCommuteDays}
	res, err := ex.Extract(context.Background(), profile, "five")
	if err != nil {
		t.Fatalf("Extract err: %v", err)
	}
	if res.Value != "5" {
		t.Fatalf("expected numeric value as text, got %q", res.Value)
	}
}

func TestExtractReportsModelFailure(t *testing.T) {
	ex, err := NewExtractor(context.Background(), &scriptedModel{err: errors.New("quota")})
	if err != nil {
		t.Fatalf("NewExtractor err: %v", err)
	}
	if _, err := ex.Extract(context.Background(), onboarding.NewProfile(), "12345"); err == nil {
		t.Fatal("expected error when the model fails")
	}
}

func TestExtractRejectsNonJSON(t *testing.T) {
	ex, err := NewExtractor(context.Background(), &scriptedModel{reply: "I think that's a ZIP code."})
	if err != nil {
		t.Fatalf("NewExtractor err: %v", err)
	}
	if _, err := ex.Extract(context.Background(), onboarding.NewProfile(), "12345"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBlindSpotPromptFollowsVehicleUse(t *testing.T) {
	pm := NewPromptManager()

	commuter := onboarding.Profile{Step: onboarding.StepBlindSpot, Current: onboarding.Vehicle{Use: onboarding.UseCommuting}}
	prompt, err := pm.BuildSystemPrompt(onboarding.StepBlindSpot, commuter)
	if err != nil {
		t.Fatalf("BuildSystemPrompt err: %v", err)
	}
	if !strings.Contains(prompt, "days per week") {
		t.Fatalf("commuting vehicle should ask for days, got:\n%s", prompt)
	}

	farm := onboarding.Profile{Step: onboarding.StepBlindSpot, Current: onboarding.Vehicle{Use: onboarding.UseFarming}}
	prompt, _ = pm.BuildSystemPrompt(onboarding.StepBlindSpot, farm)
	if !strings.Contains(prompt, "annual mileage") {
		t.Fatalf("non-commuting vehicle should ask for mileage, got:\n%s", prompt)
	}
}

func TestEveryStepHasTemplate(t *testing.T) {
	pm := NewPromptManager()
	steps := []onboarding.Step{
		onboarding.StepZip, onboarding.StepName, onboarding.StepEmail, onboarding.StepAddVehicle,
		onboarding.StepVehicleVIN, onboarding.StepVehicleUse, onboarding.StepBlindSpot,
		onboarding.StepCommuteDays, onboarding.StepCommuteMiles, onboarding.StepAnnualMileage,
		onboarding.StepAddAnotherVehicle, onboarding.StepLicenseType, onboarding.StepLicenseStatus,
	}
	for _, step := range steps {
		if _, err := pm.GetPromptTemplate(step); err != nil {
			t.Fatalf("missing template for %s", step)
		}
	}
	if _, err := pm.GetPromptTemplate(onboarding.StepDone); err == nil {
		t.Fatal("done has no template")
	}
}
