package onboarding

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/onboard/internal/model/chat"
	model "github.com/zhouzirui/onboard/internal/model/onboarding"
)

// AlreadyComplete answers any input after the summary was sent.
const AlreadyComplete = "Your onboarding is already complete. Thank you!"

var questions = map[model.Step]string{
	model.StepZip:               "Please enter your 5-digit ZIP code.",
	model.StepName:              "Perfect! What's your full name?",
	model.StepEmail:             "Thanks! Now I need your email address.",
	model.StepAddVehicle:        "Great! Do you want to add a vehicle?",
	model.StepVehicleVIN:        "Please provide your vehicle's VIN or the Year, Make, Model, and Body Type.",
	model.StepVehicleUse:        "Got it! How is this vehicle primarily used? (commuting, commercial, farming, or business)",
	model.StepBlindSpot:         "Does this vehicle have blind spot warning equipped? (yes or no)",
	model.StepCommuteDays:       "How many days per week do you use this vehicle for commuting?",
	model.StepCommuteMiles:      "And how many miles is your one-way commute to work or school?",
	model.StepAnnualMileage:     "What's the annual mileage for this vehicle?",
	model.StepAddAnotherVehicle: "Noted! Would you like to add another vehicle?",
	model.StepLicenseType:       "What is your US License Type? Foreign, Personal, or Commercial?",
	model.StepLicenseStatus:     "Is your license currently valid or suspended?",
}

// Question returns the prompt for step.
func Question(step model.Step) string {
	if q, ok := questions[step]; ok {
		return q
	}
	return AlreadyComplete
}

// advance applies an accepted value to p and moves it to the next step.
// It returns the finished vehicle when the answer closed one out.
func advance(p *model.Profile, value string) (finished *model.Vehicle) {
	switch p.Step {
	case model.StepZip:
		p.ZipCode = value
		p.Step = model.StepName

	case model.StepName:
		p.FullName = value
		p.Step = model.StepEmail

	case model.StepEmail:
		p.Email = value
		p.Step = model.StepAddVehicle

	case model.StepAddVehicle, model.StepAddAnotherVehicle:
		if value == "yes" {
			p.Step = model.StepVehicleVIN
		} else {
			p.Step = model.StepLicenseType
		}

	case model.StepVehicleVIN:
		p.Current = model.Vehicle{VIN: value}
		p.Step = model.StepVehicleUse

	case model.StepVehicleUse:
		p.Current.Use = value
		p.Step = model.StepBlindSpot

	case model.StepBlindSpot:
		p.Current.BlindSpot = value
		if p.Current.Use == model.UseCommuting {
			p.Step = model.StepCommuteDays
		} else {
			p.Step = model.StepAnnualMileage
		}

	case model.StepCommuteDays:
		p.Current.CommuteDays = value
		p.Step = model.StepCommuteMiles

	case model.StepCommuteMiles:
		p.Current.CommuteMiles = value
		finished = closeVehicle(p)

	case model.StepAnnualMileage:
		p.Current.AnnualMileage = value
		finished = closeVehicle(p)

	case model.StepLicenseType:
		p.LicenseType = value
		if value == model.LicenseForeign {
			p.Step = model.StepDone
		} else {
			p.Step = model.StepLicenseStatus
		}

	case model.StepLicenseStatus:
		p.LicenseStatus = value
		p.Step = model.StepDone
	}
	return finished
}

func closeVehicle(p *model.Profile) *model.Vehicle {
	v := p.Current
	p.Vehicles = append(p.Vehicles, v)
	p.Current = model.Vehicle{}
	p.Step = model.StepAddAnotherVehicle
	return &v
}

// Summary renders the completion message. It always starts with the
// completion sentinel the client watches for.
func Summary(p model.Profile) string {
	status := p.LicenseStatus
	if status == "" {
		status = "N/A"
	}

	var b strings.Builder
	b.WriteString(chat.Sentinel)
	fmt.Fprintf(&b, "\n- ZIP: %s", p.ZipCode)
	fmt.Fprintf(&b, "\n- Name: %s", p.FullName)
	fmt.Fprintf(&b, "\n- Email: %s", p.Email)
	fmt.Fprintf(&b, "\n- Vehicles: %d", len(p.Vehicles))
	fmt.Fprintf(&b, "\n- License Type: %s", p.LicenseType)
	fmt.Fprintf(&b, "\n- License Status: %s", status)
	return b.String()
}
