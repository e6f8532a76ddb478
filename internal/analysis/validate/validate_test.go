package validate

import (
	"testing"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

func TestZip(t *testing.T) {
	cases := map[string]bool{
		"12345":  true,
		" 02139": true,
		"1234":   false,
		"123456": false,
		"12a45":  false,
		"":       false,
	}
	for input, want := range cases {
		r := Check(onboarding.StepZip, input)
		if r.Valid != want {
			t.Fatalf("zip %q: expected valid=%v, got %+v", input, want, r)
		}
		if !r.Valid && r.Message == "" {
			t.Fatalf("zip %q: rejection needs a message", input)
		}
	}

	if r := Zip("1234"); r.Message != "That's only 4 digits. Please enter a 5-digit ZIP code." {
		t.Fatalf("unexpected message %q", r.Message)
	}
}

func TestName(t *testing.T) {
	cases := map[string]bool{
		"John Smith":        true,
		"Mary-Jane O'Brien": true,
		"  Ada   Lovelace ": true,
		"John":              false,
		"John123 Smith":     false,
		"J Smith":           false,
		"John Sm!th":        false,
	}
	for input, want := range cases {
		if r := Name(input); r.Valid != want {
			t.Fatalf("name %q: expected valid=%v, got %+v", input, want, r)
		}
	}

	if r := Name("  Ada   Lovelace "); r.Value != "Ada Lovelace" {
		t.Fatalf("name should be collapsed, got %q", r.Value)
	}
}

func TestEmail(t *testing.T) {
	cases := map[string]bool{
		"john@gmail.com":          true,
		"sarah.smith@company.org": true,
		"a@b.co.uk":               true,
		"notanemail":              false,
		"john@":                   false,
		"john smith@gmail.com":    false,
		"john@gmail":              false,
	}
	for input, want := range cases {
		if r := Email(input); r.Valid != want {
			t.Fatalf("email %q: expected valid=%v, got %+v", input, want, r)
		}
	}
}

func TestYesNoVariations(t *testing.T) {
	for _, input := range []string{"yes", "Yeah!", "sure thing", "OK", "y"} {
		if r := Check(onboarding.StepAddVehicle, input); !r.Valid || r.Value != "yes" {
			t.Fatalf("%q should mean yes, got %+v", input, r)
		}
	}
	for _, input := range []string{"no", "Nope.", "not now", "no thanks", "n"} {
		if r := Check(onboarding.StepAddAnotherVehicle, input); !r.Valid || r.Value != "no" {
			t.Fatalf("%q should mean no, got %+v", input, r)
		}
	}
	if r := Check(onboarding.StepBlindSpot, "maybe"); r.Valid {
		t.Fatalf("maybe is not an answer, got %+v", r)
	}
}

func TestVehicle(t *testing.T) {
	if r := Vehicle("1HGBH41JXMN109186"); !r.Valid || r.Value != "1HGBH41JXMN109186" {
		t.Fatalf("VIN should be accepted, got %+v", r)
	}
	if r := Vehicle("1hgbh41jxmn109186"); !r.Valid || r.Value != "1HGBH41JXMN109186" {
		t.Fatalf("lowercase VIN should be upper-cased, got %+v", r)
	}
	if r := Vehicle("2022 Honda Civic Sedan"); !r.Valid {
		t.Fatalf("year make model body should be accepted, got %+v", r)
	}
	for _, input := range []string{"Honda Civic", "1HGBH41JXMN10918O", "Honda Civic Sedan 2022"} {
		if r := Vehicle(input); r.Valid {
			t.Fatalf("%q should be rejected", input)
		}
	}
}

func TestUse(t *testing.T) {
	cases := map[string]string{
		"commuting":         onboarding.UseCommuting,
		"I commute with it": onboarding.UseCommuting,
		"Commercial":        onboarding.UseCommercial,
		"farm work":         onboarding.UseFarming,
		"for my business":   onboarding.UseBusiness,
	}
	for input, want := range cases {
		if r := Use(input); !r.Valid || r.Value != want {
			t.Fatalf("use %q: expected %s, got %+v", input, want, r)
		}
	}
	if r := Use("I use it for work"); r.Valid || r.Message != "Is this for commuting to work or commercial/business use?" {
		t.Fatalf("ambiguous work use should ask for clarification, got %+v", r)
	}
}

func TestCommuteDays(t *testing.T) {
	cases := map[string]string{
		"5":               "5",
		"every day":       "7",
		"Every Day":       "7",
		"7 days a week":   "7",
		"weekdays":        "5",
		"three":           "3",
		"4 days":          "4",
		"1 day":           "1",
		"3 days per week": "3",
		"two days a week": "2",
	}
	for input, want := range cases {
		if r := CommuteDays(input); !r.Valid || r.Value != want {
			t.Fatalf("days %q: expected %s, got %+v", input, want, r)
		}
	}
	for _, input := range []string{"0", "8", "lots"} {
		if r := CommuteDays(input); r.Valid {
			t.Fatalf("days %q should be rejected", input)
		}
	}
}

func TestMiles(t *testing.T) {
	cases := map[string]string{
		"15":       "15",
		"10.5":     "10.5",
		"15,000":   "15000",
		"12 miles": "12",
		"20mi":     "20",
	}
	for input, want := range cases {
		if r := Check(onboarding.StepAnnualMileage, input); !r.Valid || r.Value != want {
			t.Fatalf("miles %q: expected %s, got %+v", input, want, r)
		}
	}
	for _, input := range []string{"-3", "0", "far"} {
		if r := Check(onboarding.StepCommuteMiles, input); r.Valid {
			t.Fatalf("miles %q should be rejected", input)
		}
	}
}

func TestLicense(t *testing.T) {
	if r := LicenseType("Personal"); r.Value != onboarding.LicensePersonal {
		t.Fatalf("unexpected type %+v", r)
	}
	if r := LicenseType("regular"); r.Valid {
		t.Fatal("regular is not a license type")
	}

	statuses := map[string]string{
		"valid":         onboarding.StatusValid,
		"Active":        onboarding.StatusValid,
		"good standing": onboarding.StatusValid,
		"suspended":     onboarding.StatusSuspended,
	}
	for input, want := range statuses {
		if r := LicenseStatus(input); !r.Valid || r.Value != want {
			t.Fatalf("status %q: expected %s, got %+v", input, want, r)
		}
	}
	for _, input := range []string{"expired", "I don't know", "revoked"} {
		if r := LicenseStatus(input); r.Valid {
			t.Fatalf("status %q should be rejected", input)
		}
	}
}

func TestCanonical(t *testing.T) {
	if v, ok := Canonical(onboarding.StepVehicleUse, "Commercial"); !ok || v != onboarding.UseCommercial {
		t.Fatalf("unexpected canonical use %q %v", v, ok)
	}
	if _, ok := Canonical(onboarding.StepLicenseStatus, "pending"); ok {
		t.Fatal("pending is not a license status")
	}
	if _, ok := Canonical(onboarding.StepDone, "anything"); ok {
		t.Fatal("nothing is accepted once done")
	}
}
