package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

// PromptTemplate describes how the model should handle one onboarding step.
type PromptTemplate struct {
	Role     string
	Rules    []string
	Examples []string
	Query    string
}

// PromptManager holds the per-step templates.
type PromptManager struct {
	templates map[onboarding.Step]*PromptTemplate
}

// NewPromptManager 创建包含默认步骤模板的管理器。
func NewPromptManager() *PromptManager {
	pm := &PromptManager{templates: make(map[onboarding.Step]*PromptTemplate)}
	pm.loadDefaultTemplates()
	return pm
}

// GetPromptTemplate returns the template for step.
func (pm *PromptManager) GetPromptTemplate(step onboarding.Step) (*PromptTemplate, error) {
	template, exists := pm.templates[step]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for step: %s", step)
	}
	return template, nil
}

// BuildSystemPrompt renders the system prompt for step. The blind spot step
// needs the current vehicle's use to know which question comes next.
func (pm *PromptManager) BuildSystemPrompt(step onboarding.Step, profile onboarding.Profile) (string, error) {
	template, err := pm.GetPromptTemplate(step)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(template.Role)
	b.WriteString("\n\nVALIDATION RULES:\n")
	for i, rule := range template.Rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	if step == onboarding.StepBlindSpot {
		fmt.Fprintf(&b, "\nIMPORTANT: After validating the blind spot response, your message should ask: %q\n", followUpAfterBlindSpot(profile))
	}

	b.WriteString("\nResponse format (JSON only, no other text):\n")
	b.WriteString(`{"message": "your message to the user", "valid": true/false, "value": "normalized value only if valid"}`)
	b.WriteString("\n")

	if len(template.Examples) > 0 {
		b.WriteString("\nExamples:\n- ")
		b.WriteString(strings.Join(template.Examples, "\n- "))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// BuildQuery wraps the raw user input the way the template expects.
func (pm *PromptManager) BuildQuery(step onboarding.Step, input string) string {
	template, err := pm.GetPromptTemplate(step)
	if err != nil {
		return input
	}
	return fmt.Sprintf("%s: %s", template.Query, strings.TrimSpace(input))
}

func followUpAfterBlindSpot(profile onboarding.Profile) string {
	if profile.Current.Use == onboarding.UseCommuting {
		return "How many days per week do you use this vehicle for commuting?"
	}
	return "What's the annual mileage for this vehicle?"
}

func (pm *PromptManager) loadDefaultTemplates() {
	yesNo := []string{
		`Interpret YES responses: "yes", "yeah", "sure", "ok", "y", "yep", "definitely", "I do", "let's do it"`,
		`Interpret NO responses: "no", "nope", "n", "not now", "skip", "no thanks", "later", "I don't"`,
		`value MUST be "yes" or "no"`,
		"If the answer is unclear, set valid to false and ask for a yes or no answer",
	}

	pm.templates[onboarding.StepZip] = &PromptTemplate{
		Role: "You are a ZIP code validator. You MUST validate strictly.",
		Rules: []string{
			"MUST be EXACTLY 5 digits, no more, no less",
			"MUST contain ONLY numbers (0-9)",
			`"1234" is INVALID (only 4 digits)`,
			`"12a45" is INVALID (contains a letter)`,
		},
		Examples: []string{
			`Input "1234" → {"message": "That's only 4 digits. Please enter a 5-digit ZIP code.", "valid": false}`,
			`Input "12345" → {"message": "Perfect! What's your full name?", "valid": true, "value": "12345"}`,
		},
		Query: "Validate this ZIP code",
	}

	pm.templates[onboarding.StepName] = &PromptTemplate{
		Role: "You collect and validate full names for onboarding.",
		Rules: []string{
			"Must include both first and last name",
			"Each name should be at least 2 characters",
			"Only letters, spaces, hyphens, and apostrophes allowed",
			"Names can't contain vulgar language",
		},
		Examples: []string{
			`Input "John" → {"message": "I need both your first and last name. Could you provide your full name?", "valid": false}`,
			`Input "Mary-Jane O'Brien" → {"message": "Nice to meet you, Mary-Jane! What's your email address?", "valid": true, "value": "Mary-Jane O'Brien"}`,
		},
		Query: "Validate this name",
	}

	pm.templates[onboarding.StepEmail] = &PromptTemplate{
		Role: "You collect and validate email addresses for onboarding.",
		Rules: []string{
			"Must have an @ symbol with text before and after it",
			"Must have a domain extension (e.g. .com, .org, .edu)",
			"No spaces allowed",
			"After a valid email, ask whether the user wants to add a vehicle",
		},
		Examples: []string{
			`Input "john@gmail.com" → {"message": "Great! Do you want to add a vehicle?", "valid": true, "value": "john@gmail.com"}`,
			`Input "john@" → {"message": "Your email seems incomplete. Please provide the full email address including the domain.", "valid": false}`,
		},
		Query: "Validate this email",
	}

	pm.templates[onboarding.StepAddVehicle] = &PromptTemplate{
		Role: "You ask if the user wants to add a vehicle and interpret their response.",
		Rules: append(append([]string{}, yesNo...),
			"On yes, ask for the vehicle's VIN or its Year, Make, Model, and Body Type",
			"On no, ask for the US License Type: Foreign, Personal, or Commercial",
		),
		Examples: []string{
			`Input "sure thing" → {"message": "Perfect! I'll need either your vehicle's VIN or the Year, Make, Model, and Body Type.", "valid": true, "value": "yes"}`,
			`Input "no" → {"message": "No problem! Is your US License Type Foreign, Personal, or Commercial?", "valid": true, "value": "no"}`,
		},
		Query: "User response",
	}

	pm.templates[onboarding.StepAddAnotherVehicle] = &PromptTemplate{
		Role:  "You ask if the user wants to add another vehicle and interpret their response.",
		Rules: pm.templates[onboarding.StepAddVehicle].Rules,
		Examples: []string{
			`Input "yes" → {"message": "Great! Please provide the next vehicle's VIN or Year, Make, Model, and Body Type.", "valid": true, "value": "yes"}`,
			`Input "nope" → {"message": "Got it. Is your US License Type Foreign, Personal, or Commercial?", "valid": true, "value": "no"}`,
		},
		Query: "Response",
	}

	pm.templates[onboarding.StepVehicleVIN] = &PromptTemplate{
		Role: "You collect vehicle identification information.",
		Rules: []string{
			"Accept a 17 character VIN",
			"Or accept Year, Make, Model, and Body Type (all four required)",
			"After a valid answer, ask how the vehicle is primarily used (commuting, commercial, farming, or business)",
		},
		Examples: []string{
			`Input "1HGBH41JXMN109186" → {"message": "Got it! How is this vehicle primarily used? (commuting, commercial, farming, or business)", "valid": true, "value": "1HGBH41JXMN109186"}`,
			`Input "Honda Civic" → {"message": "I need more details. Please provide either a VIN or the Year, Make, Model, and Body Type.", "valid": false}`,
		},
		Query: "Vehicle info",
	}

	pm.templates[onboarding.StepVehicleUse] = &PromptTemplate{
		Role: "You collect vehicle use type.",
		Rules: []string{
			"Valid uses: commuting, commercial, farming, business (accept variations)",
			"value MUST be one of commuting/commercial/farming/business",
			`After a valid answer, ask "Does this vehicle have blind spot warning equipped? (yes or no)"`,
		},
		Examples: []string{
			`Input "I use it for work" → {"message": "Is this for commuting to work or commercial/business use?", "valid": false}`,
			`Input "farming" → {"message": "Got it, farming use. Does this vehicle have blind spot warning equipped? (yes or no)", "valid": true, "value": "farming"}`,
		},
		Query: "Vehicle use",
	}

	pm.templates[onboarding.StepBlindSpot] = &PromptTemplate{
		Role:  "You ask about blind spot warning.",
		Rules: yesNo,
		Query: "Blind spot response",
	}

	pm.templates[onboarding.StepCommuteDays] = &PromptTemplate{
		Role: "You collect days per week for commuting.",
		Rules: []string{
			"Valid: 1-7 days",
			`"every day" means 7, "weekdays" means 5`,
			"value MUST be the number of days as digits",
			"After a valid answer, ask how many miles the one-way commute is",
		},
		Examples: []string{
			`Input "every day" → {"message": "So that's 7 days a week. How many miles one-way to work/school?", "valid": true, "value": "7"}`,
		},
		Query: "Days per week",
	}

	pm.templates[onboarding.StepCommuteMiles] = &PromptTemplate{
		Role: "You collect one-way commute miles.",
		Rules: []string{
			"Must be a positive number",
			"value MUST be the number as digits",
			"After a valid answer, ask whether the user wants to add another vehicle",
		},
		Examples: []string{
			`Input "10.5" → {"message": "Got it, 10.5 miles. Do you have another vehicle to add?", "valid": true, "value": "10.5"}`,
		},
		Query: "Miles",
	}

	pm.templates[onboarding.StepAnnualMileage] = &PromptTemplate{
		Role: "You collect annual mileage for commercial/farming/business vehicles.",
		Rules: []string{
			"Must be a positive number, commas allowed",
			"value MUST be the number as digits without commas",
			"After a valid answer, ask whether the user wants to add another vehicle",
		},
		Examples: []string{
			`Input "15,000" → {"message": "Got it, 15,000 miles annually. Do you have another vehicle to add?", "valid": true, "value": "15000"}`,
		},
		Query: "Annual mileage",
	}

	pm.templates[onboarding.StepLicenseType] = &PromptTemplate{
		Role: "You collect US License Type information.",
		Rules: []string{
			"Valid types: Foreign, Personal, Commercial (accept case variations)",
			"value MUST be one of foreign/personal/commercial",
			"For personal or commercial, ask whether the license is currently valid or suspended",
		},
		Examples: []string{
			`Input "commercial" → {"message": "Got it, commercial license. Is it currently valid or suspended?", "valid": true, "value": "commercial"}`,
			`Input "regular" → {"message": "Do you mean a personal license? Please specify: Foreign, Personal, or Commercial.", "valid": false}`,
		},
		Query: "License type",
	}

	pm.templates[onboarding.StepLicenseStatus] = &PromptTemplate{
		Role: "You collect license status (only for personal or commercial licenses).",
		Rules: []string{
			`Valid statuses: valid, suspended (accept variations like "active", "good standing" = valid)`,
			"value MUST be valid or suspended",
		},
		Examples: []string{
			`Input "expired" → {"message": "Is your license currently valid or suspended? Please specify one of these two options.", "valid": false}`,
			`Input "active" → {"message": "Great, your license is active.", "valid": true, "value": "valid"}`,
		},
		Query: "License status",
	}
}
