package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

// Result 是一次规则校验的结果。Valid 为 false 时 Message 给出纠正提示。
type Result struct {
	Valid   bool
	Value   string
	Message string
}

func ok(value string) Result {
	return Result{Valid: true, Value: value}
}

func reject(message string) Result {
	return Result{Message: message}
}

var (
	namePartPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z'-]*$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)*\.[A-Za-z]{2,}$`)
	vinPattern      = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	yearPattern     = regexp.MustCompile(`^(19|20)\d{2}$`)
)

var yesWords = map[string]struct{}{
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {}, "ok": {}, "okay": {},
	"definitely": {}, "of course": {}, "i do": {}, "let's do it": {}, "sure thing": {}, "absolutely": {},
	"it does": {}, "true": {},
}

var noWords = map[string]struct{}{
	"no": {}, "n": {}, "nope": {}, "nah": {}, "not now": {}, "skip": {}, "no thanks": {},
	"later": {}, "i don't": {}, "i do not": {}, "it doesn't": {}, "it does not": {}, "none": {}, "false": {},
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
}

// Check 按当前步骤校验用户输入并规范化取值。
func Check(step onboarding.Step, input string) Result {
	input = strings.TrimSpace(input)

	switch step {
	case onboarding.StepZip:
		return Zip(input)
	case onboarding.StepName:
		return Name(input)
	case onboarding.StepEmail:
		return Email(input)
	case onboarding.StepAddVehicle, onboarding.StepAddAnotherVehicle:
		r := YesNo(input)
		if !r.Valid {
			r.Message = "I need a yes or no answer. Would you like to add a vehicle now?"
		}
		return r
	case onboarding.StepVehicleVIN:
		return Vehicle(input)
	case onboarding.StepVehicleUse:
		return Use(input)
	case onboarding.StepBlindSpot:
		r := YesNo(input)
		if !r.Valid {
			r.Message = "Does this vehicle have blind spot warning equipped? Please answer yes or no."
		}
		return r
	case onboarding.StepCommuteDays:
		return CommuteDays(input)
	case onboarding.StepCommuteMiles:
		return Miles(input, "How many miles is your one-way commute? Please enter a number.")
	case onboarding.StepAnnualMileage:
		return Miles(input, "What's the annual mileage for this vehicle? Please enter a number.")
	case onboarding.StepLicenseType:
		return LicenseType(input)
	case onboarding.StepLicenseStatus:
		return LicenseStatus(input)
	default:
		return reject("Onboarding is already complete.")
	}
}

// Zip 要求恰好 5 位数字。
func Zip(input string) Result {
	digits := 0
	for _, r := range input {
		if !unicode.IsDigit(r) {
			return reject("ZIP codes can only contain numbers. Please enter a 5-digit ZIP code.")
		}
		digits++
	}

	switch {
	case digits == 5:
		return ok(input)
	case digits == 0:
		return reject("Please enter a 5-digit ZIP code.")
	case digits < 5:
		return reject(fmt.Sprintf("That's only %d digits. Please enter a 5-digit ZIP code.", digits))
	default:
		return reject(fmt.Sprintf("That's %d digits. ZIP codes need exactly 5 digits.", digits))
	}
}

// Name 要求名和姓，各部分至少两个字母。
func Name(input string) Result {
	parts := strings.Fields(input)
	if len(parts) < 2 {
		return reject("I need both your first and last name. Could you provide your full name?")
	}

	for _, part := range parts {
		if strings.IndexFunc(part, unicode.IsDigit) >= 0 {
			return reject("Names shouldn't contain numbers. Please enter your full name using only letters.")
		}
		if !namePartPattern.MatchString(part) {
			return reject("Names can only contain letters, hyphens, and apostrophes. Please enter your full name.")
		}
		letters := 0
		for _, r := range part {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters < 2 {
			return reject("Each part of your name should be at least 2 letters. Please enter your full name.")
		}
	}

	return ok(strings.Join(parts, " "))
}

// Email 校验 username@domain.tld 格式。
func Email(input string) Result {
	if strings.ContainsAny(input, " \t") {
		return reject("Email addresses can't contain spaces. Please enter a valid email.")
	}
	if !strings.Contains(input, "@") {
		return reject("That doesn't look like a valid email. Please include an @ symbol and domain.")
	}
	if !emailPattern.MatchString(input) {
		return reject("Your email seems incomplete. Please provide the full email address including the domain.")
	}
	return ok(input)
}

// YesNo 把常见的肯定/否定说法归一为 "yes" 或 "no"。
func YesNo(input string) Result {
	normalized := normalize(input)
	if _, found := yesWords[normalized]; found {
		return ok("yes")
	}
	if _, found := noWords[normalized]; found {
		return ok("no")
	}
	return reject("I need a yes or no answer.")
}

// Vehicle 接受 17 位 VIN，或 "Year Make Model Body" 四段描述。
func Vehicle(input string) Result {
	compact := strings.ToUpper(strings.ReplaceAll(input, " ", ""))
	if vinPattern.MatchString(compact) {
		return ok(compact)
	}

	parts := strings.Fields(input)
	if len(parts) >= 4 && yearPattern.MatchString(parts[0]) {
		return ok(strings.Join(parts, " "))
	}
	return reject("I need more details. Please provide either a VIN or the Year, Make, Model, and Body Type.")
}

// Use 识别车辆用途。
func Use(input string) Result {
	normalized := normalize(input)
	switch {
	case strings.Contains(normalized, "commut"):
		return ok(onboarding.UseCommuting)
	case strings.Contains(normalized, "commercial"):
		return ok(onboarding.UseCommercial)
	case strings.Contains(normalized, "farm"):
		return ok(onboarding.UseFarming)
	case strings.Contains(normalized, "business"):
		return ok(onboarding.UseBusiness)
	case strings.Contains(normalized, "work"):
		return reject("Is this for commuting to work or commercial/business use?")
	default:
		return reject("How is this vehicle primarily used? Please choose commuting, commercial, farming, or business.")
	}
}

// CommuteDays 接受 1 到 7 天，支持 "every day" 与 "weekdays"。
func CommuteDays(input string) Result {
	normalized := normalize(input)
	switch normalized {
	case "every day", "everyday", "daily", "all week", "7 days a week":
		return ok("7")
	case "weekdays", "every weekday", "monday to friday":
		return ok("5")
	}

	// 短语匹配之后再去掉单位后缀，"every day" 不能被截成 "every"。
	for _, suffix := range []string{" days a week", " days per week", " days", " day"} {
		if trimmed, found := strings.CutSuffix(normalized, suffix); found {
			normalized = trimmed
			break
		}
	}

	days, found := numberWords[normalized]
	if !found {
		n, err := strconv.Atoi(normalized)
		if err != nil {
			return reject("How many days per week do you commute? Please enter a number from 1 to 7.")
		}
		days = n
	}
	if days < 1 || days > 7 {
		return reject("Days per week must be between 1 and 7.")
	}
	return ok(strconv.Itoa(days))
}

// Miles 解析正数里程，允许千分位逗号和 "miles" 后缀。
func Miles(input, retry string) Result {
	normalized := normalize(input)
	for _, suffix := range []string{" miles", " mile", " mi", "mi"} {
		normalized = strings.TrimSuffix(normalized, suffix)
	}
	normalized = strings.ReplaceAll(strings.TrimSpace(normalized), ",", "")

	val, err := strconv.ParseFloat(normalized, 64)
	if err != nil || val <= 0 {
		return reject(retry)
	}
	return ok(strconv.FormatFloat(val, 'f', -1, 64))
}

// LicenseType 识别 foreign/personal/commercial。
func LicenseType(input string) Result {
	normalized := normalize(input)
	switch {
	case strings.Contains(normalized, onboarding.LicenseForeign):
		return ok(onboarding.LicenseForeign)
	case strings.Contains(normalized, onboarding.LicensePersonal):
		return ok(onboarding.LicensePersonal)
	case strings.Contains(normalized, onboarding.LicenseCommercial):
		return ok(onboarding.LicenseCommercial)
	case normalized == "regular":
		return reject("Do you mean a personal license? Please specify: Foreign, Personal, or Commercial.")
	default:
		return reject("What is your US License Type? Please specify: Foreign, Personal, or Commercial.")
	}
}

// LicenseStatus 识别 valid/suspended，"active" 与 "good standing" 视为 valid。
func LicenseStatus(input string) Result {
	normalized := normalize(input)
	switch {
	case strings.Contains(normalized, "suspend"):
		return ok(onboarding.StatusSuspended)
	case normalized == "valid", normalized == "active", normalized == "current",
		strings.Contains(normalized, "good standing"):
		return ok(onboarding.StatusValid)
	case strings.Contains(normalized, "revoked"):
		return reject("I need to know if it's currently valid or suspended. If it's revoked, please indicate 'suspended'.")
	default:
		return reject("Is your license currently valid or suspended? Please specify one of these two options.")
	}
}

// Canonical 检查外部给出的取值是否是该步骤允许的规范值。
// 自由文本步骤（姓名、VIN 等）重新走一遍规则校验。
func Canonical(step onboarding.Step, value string) (string, bool) {
	r := Check(step, value)
	return r.Value, r.Valid
}

func normalize(input string) string {
	lowered := strings.ToLower(strings.TrimSpace(input))
	lowered = strings.TrimRight(lowered, ".!?")
	return strings.Join(strings.Fields(lowered), " ")
}
