package onboarding_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zhouzirui/onboard/internal/analysis/validate"
	"github.com/zhouzirui/onboard/internal/model/chat"
	model "github.com/zhouzirui/onboard/internal/model/onboarding"
	"github.com/zhouzirui/onboard/internal/service/onboarding"
	"github.com/zhouzirui/onboard/internal/store"
)

func converse(t *testing.T, conv *onboarding.Conversation, inputs ...string) []string {
	t.Helper()
	replies := make([]string, 0, len(inputs))
	for _, input := range inputs {
		reply, err := conv.Reply(context.Background(), input)
		if err != nil {
			t.Fatalf("Reply(%q) err: %v", input, err)
		}
		replies = append(replies, reply)
	}
	return replies
}

func TestFullFlowWithVehiclesAndPersonalLicense(t *testing.T) {
	repo := store.NewMemory()
	svc := onboarding.NewService(repo, nil)
	conv, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}

	replies := converse(t, conv,
		"12345",
		"John Smith",
		"john@gmail.com",
		"yes",
		"1HGBH41JXMN109186",
		"commuting",
		"yes",
		"5",
		"12",
		"yes",
		"2019 Ford F-150 Pickup",
		"farming",
		"no",
		"15,000",
		"no",
		"personal",
		"active",
	)

	if replies[0] != "Perfect! What's your full name?" {
		t.Fatalf("unexpected first reply %q", replies[0])
	}
	if replies[7] != onboarding.Question(model.StepCommuteMiles) {
		t.Fatalf("commuting vehicle should ask for miles, got %q", replies[7])
	}
	if replies[12] != onboarding.Question(model.StepAnnualMileage) {
		t.Fatalf("farming vehicle should ask for annual mileage, got %q", replies[12])
	}

	summary := replies[len(replies)-1]
	want := "Information collected:\n- ZIP: 12345\n- Name: John Smith\n- Email: john@gmail.com\n- Vehicles: 2\n- License Type: personal\n- License Status: valid"
	if summary != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", summary, want)
	}
	if !strings.Contains(summary, chat.Sentinel) {
		t.Fatal("summary must carry the completion sentinel")
	}

	session, err := repo.GetSession(context.Background(), conv.ID())
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if !session.IsComplete || session.CompletedAt == nil || session.CurrentStep != model.StepDone {
		t.Fatalf("session should be complete: %+v", session)
	}

	vehicles, _ := repo.ListVehicles(context.Background(), conv.ID())
	if len(vehicles) != 2 || vehicles[0].CommuteDays != "5" || vehicles[1].AnnualMileage != "15000" {
		t.Fatalf("unexpected vehicles %+v", vehicles)
	}

	records, _ := repo.LoadTranscript(context.Background(), conv.ID())
	if len(records) != 2*len(replies) {
		t.Fatalf("expected a user and assistant record per turn, got %d", len(records))
	}
}

func TestForeignLicenseCompletesImmediately(t *testing.T) {
	svc := onboarding.NewService(store.NewMemory(), nil)
	conv, _ := svc.Start(context.Background())

	replies := converse(t, conv, "12345", "Jane Doe", "jane@example.org", "no", "Foreign")

	last := replies[len(replies)-1]
	if !strings.HasPrefix(last, chat.Sentinel) {
		t.Fatalf("expected summary, got %q", last)
	}
	if !strings.Contains(last, "- Vehicles: 0") || !strings.Contains(last, "- License Status: N/A") {
		t.Fatalf("unexpected summary %q", last)
	}
	if !conv.Profile().Complete() {
		t.Fatal("profile should be complete")
	}
}

func TestInvalidAnswerKeepsStep(t *testing.T) {
	svc := onboarding.NewService(store.NewMemory(), nil)
	conv, _ := svc.Start(context.Background())

	replies := converse(t, conv, "1234", "12a45")
	if replies[0] != "That's only 4 digits. Please enter a 5-digit ZIP code." {
		t.Fatalf("unexpected reply %q", replies[0])
	}
	if conv.Profile().Step != model.StepZip {
		t.Fatalf("step should not advance, got %s", conv.Profile().Step)
	}
}

func TestInputAfterCompletion(t *testing.T) {
	svc := onboarding.NewService(store.NewMemory(), nil)
	conv, _ := svc.Start(context.Background())
	converse(t, conv, "12345", "Jane Doe", "jane@example.org", "no", "foreign")

	replies := converse(t, conv, "hello?")
	if replies[0] != onboarding.AlreadyComplete {
		t.Fatalf("unexpected reply %q", replies[0])
	}
}

type stubExtractor struct {
	result validate.Result
	err    error
	calls  int
}

func (s *stubExtractor) Extract(context.Context, model.Profile, string) (validate.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestExtractorMessageIsUsed(t *testing.T) {
	ex := &stubExtractor{result: validate.Result{Valid: true, Value: "12345", Message: "Lovely, what's your full name?"}}
	conv, _ := onboarding.NewService(store.NewMemory(), ex).Start(context.Background())

	replies := converse(t, conv, "my zip is 12345")
	if replies[0] != "Lovely, what's your full name?" {
		t.Fatalf("model message should be forwarded, got %q", replies[0])
	}
	if conv.Profile().ZipCode != "12345" {
		t.Fatalf("zip not stored: %+v", conv.Profile())
	}
}

func TestExtractorFailureFallsBackToRules(t *testing.T) {
	ex := &stubExtractor{err: errors.New("timeout")}
	conv, _ := onboarding.NewService(store.NewMemory(), ex).Start(context.Background())

	replies := converse(t, conv, "12345")
	if ex.calls != 1 {
		t.Fatalf("extractor should be tried, calls=%d", ex.calls)
	}
	if replies[0] != "Perfect! What's your full name?" {
		t.Fatalf("rule fallback should answer, got %q", replies[0])
	}
}

func TestExtractorOutOfVocabularyFallsBack(t *testing.T) {
	ex := &stubExtractor{result: validate.Result{Valid: true, Value: "1234", Message: "Great!"}}
	conv, _ := onboarding.NewService(store.NewMemory(), ex).Start(context.Background())

	replies := converse(t, conv, "1234")
	if conv.Profile().Step != model.StepZip {
		t.Fatal("a bad model value must not advance the flow")
	}
	if replies[0] != "That's only 4 digits. Please enter a 5-digit ZIP code." {
		t.Fatalf("unexpected reply %q", replies[0])
	}
}

func TestSummaryFormat(t *testing.T) {
	p := model.Profile{ZipCode: "02139", FullName: "Ada Lovelace", Email: "ada@example.com", LicenseType: "foreign"}
	got := onboarding.Summary(p)
	want := "Information collected:\n- ZIP: 02139\n- Name: Ada Lovelace\n- Email: ada@example.com\n- Vehicles: 0\n- License Type: foreign\n- License Status: N/A"
	if got != want {
		t.Fatalf("unexpected summary:\n%s", got)
	}
}
