package authclient

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// emailPattern accepts addresses on the university domain only. The domain
// match is case-sensitive and the local part admits no whitespace or
// additional @.
var emailPattern = regexp.MustCompile(`^[^\s@]+@sharif\.edu$`)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// DormitoryNone is the sentinel selected for students who do not live in a
// dormitory. It is the profile form's default.
const DormitoryNone = "not_a_dorm_resident"

// Faculties returns the enumerated faculty list the profile step selects
// from.
func Faculties() []string {
	return []string{
		"aerospace_engineering",
		"chemical_petroleum_engineering",
		"chemistry",
		"civil_engineering",
		"computer_engineering",
		"electrical_engineering",
		"energy_engineering",
		"industrial_engineering",
		"languages_linguistics",
		"management_economics",
		"materials_science_engineering",
		"mathematical_sciences",
		"mechanical_engineering",
		"philosophy_of_science",
		"physics",
	}
}

// Dormitories returns the selectable dormitories, the no-dorm sentinel
// first.
func Dormitories() []string {
	return []string{
		DormitoryNone,
		"ahmadi_roshan",
		"shahid_moharami",
		"shahid_vezvaei",
		"tarasht_2",
		"tarasht_3",
	}
}

// ValidateUniversityEmail is a validation.By rule for the sharif.edu email
// pattern.
func ValidateUniversityEmail(value any) error {
	s, _ := value.(string)
	if !emailPattern.MatchString(s) {
		return errors.New("must be a valid sharif.edu address")
	}
	return nil
}

// ValidateStringEquals builds a rule asserting equality with a fixed value.
func ValidateStringEquals(expected string) func(any) error {
	return func(value any) error {
		s, _ := value.(string)
		if s != expected {
			return errors.New("values do not match")
		}
		return nil
	}
}

func validatePasswordStrength(value any) error {
	s, _ := value.(string)
	strength := CheckPasswordStrength(s)
	if strength.Valid {
		return nil
	}
	return errors.New(strength.Errors[0])
}

// EmailPayload is the step-1 form.
type EmailPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (p EmailPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Email,
			validation.Required,
			validation.By(ValidateUniversityEmail),
		),
	)
}

// CodePayload is the one-time-code form.
type CodePayload struct {
	Code string `json:"code"`
}

// Validate will run validation rules
func (p CodePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Code,
			validation.Required,
			validation.Match(codePattern).Error("must be a 6-digit code"),
		),
	)
}

// ProfilePayload is the registration profile form.
type ProfilePayload struct {
	Faculty   string `json:"faculty"`
	Dormitory string `json:"dormitory"`
}

// Validate requires a faculty from the enumerated list; the dormitory is
// optional and defaults to DormitoryNone upstream.
func (p ProfilePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Faculty,
			validation.Required,
			validation.In(toAnySlice(Faculties())...),
		),
		validation.Field(
			&p.Dormitory,
			validation.In(toAnySlice(Dormitories())...),
		),
	)
}

// NewPasswordPayload is the password-creation form for new accounts.
type NewPasswordPayload struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate will run validation rules
func (p NewPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Password,
			validation.Required,
			validation.By(validatePasswordStrength),
		),
		validation.Field(
			&p.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(p.Password)),
		),
	)
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
