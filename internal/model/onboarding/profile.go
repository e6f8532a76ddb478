package onboarding

// Step names the question the agent is currently waiting on.
type Step string

const (
	StepZip               Step = "zip"
	StepName              Step = "name"
	StepEmail             Step = "email"
	StepAddVehicle        Step = "add_vehicle"
	StepVehicleVIN        Step = "vehicle_vin"
	StepVehicleUse        Step = "vehicle_use"
	StepBlindSpot         Step = "blind_spot"
	StepCommuteDays       Step = "commute_days"
	StepCommuteMiles      Step = "commute_miles"
	StepAnnualMileage     Step = "annual_mileage"
	StepAddAnotherVehicle Step = "add_another_vehicle"
	StepLicenseType       Step = "license_type"
	StepLicenseStatus     Step = "license_status"
	StepDone              Step = "done"
)

// Use types accepted for a vehicle.
const (
	UseCommuting  = "commuting"
	UseCommercial = "commercial"
	UseFarming    = "farming"
	UseBusiness   = "business"
)

// License types and statuses.
const (
	LicenseForeign    = "foreign"
	LicensePersonal   = "personal"
	LicenseCommercial = "commercial"

	StatusValid     = "valid"
	StatusSuspended = "suspended"
)

// Profile is the working state of an onboarding conversation.
type Profile struct {
	Step          Step
	ZipCode       string
	FullName      string
	Email         string
	Vehicles      []Vehicle
	Current       Vehicle
	LicenseType   string
	LicenseStatus string
}

// NewProfile returns a profile positioned at the first question.
func NewProfile() Profile {
	return Profile{Step: StepZip}
}

// Complete reports whether every required answer has been collected.
func (p Profile) Complete() bool {
	return p.Step == StepDone
}
