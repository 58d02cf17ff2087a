package models

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// ShapeWarnings lists fields that look suspicious. Nothing here rejects a
// request: the profile service owns field validation, so the gateway only
// reports what it notices.
func (r RegistrationRequest) ShapeWarnings() []string {
	var warnings []string
	if !govalidator.IsEmail(r.Email) {
		warnings = append(warnings, "email is not a valid address")
	}
	if r.Email != strings.TrimSpace(r.Email) {
		warnings = append(warnings, "email has surrounding whitespace")
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		warnings = append(warnings, "first or last name is empty")
	}
	if r.PhoneNumber != "" && !govalidator.StringMatches(r.PhoneNumber, `^\+?[0-9 ()-]{4,}$`) {
		warnings = append(warnings, "phone number has unexpected characters")
	}
	return warnings
}
