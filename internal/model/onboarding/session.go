package onboarding

import "time"

// Session captures one onboarding conversation held by the agent.
type Session struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CurrentStep   Step       `json:"currentStep"`
	IsComplete    bool       `json:"isComplete"`
	ZipCode       string     `json:"zipCode,omitempty"`
	FullName      string     `json:"fullName,omitempty"`
	Email         string     `json:"email,omitempty"`
	LicenseType   string     `json:"licenseType,omitempty"`
	LicenseStatus string     `json:"licenseStatus,omitempty"`
}

// Role identifies who authored a Record.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Record persists individual turns for audit/debug.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vehicle is one vehicle declared during onboarding.
type Vehicle struct {
	VIN           string    `json:"vin"`
	Use           string    `json:"useType"`
	BlindSpot     string    `json:"blindSpot"`
	CommuteDays   string    `json:"commuteDays,omitempty"`
	CommuteMiles  string    `json:"commuteMiles,omitempty"`
	AnnualMileage string    `json:"annualMileage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
