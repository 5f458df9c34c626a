package authclient

import (
	"strings"
	"unicode"
)

// passwordSymbols is the fixed set accepted by the "special character" rule.
const passwordSymbols = `!@#$%^&*()-_=+[]{};:'",.<>/?\|` + "`~"

// maxPasswordScore caps the reported score. Five rules are checked but the
// strength meter only has five buckets (0-4), so the score is clamped.
const maxPasswordScore = 4

const minPasswordLength = 8

// PasswordStrength is the result of checking a candidate password.
// Valid is true iff every rule passes, independent of the clamped Score.
type PasswordStrength struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Score  int      `json:"score"`
}

// CheckPasswordStrength applies each rule independently and reports every
// violated one, not just the first. Score counts the satisfied rules,
// clamped to maxPasswordScore.
func CheckPasswordStrength(password string) PasswordStrength {
	var violations []string
	score := 0

	if len(password) >= minPasswordLength {
		score++
	} else {
		violations = append(violations, "must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(passwordSymbols, r) {
			hasSymbol = true
		}
	}

	if hasUpper {
		score++
	} else {
		violations = append(violations, "must contain an uppercase letter")
	}

	if hasLower {
		score++
	} else {
		violations = append(violations, "must contain a lowercase letter")
	}

	if hasDigit {
		score++
	} else {
		violations = append(violations, "must contain a digit")
	}

	if hasSymbol {
		score++
	} else {
		violations = append(violations, "must contain a special character")
	}

	if score > maxPasswordScore {
		score = maxPasswordScore
	}

	return PasswordStrength{
		Valid:  len(violations) == 0,
		Errors: violations,
		Score:  score,
	}
}
