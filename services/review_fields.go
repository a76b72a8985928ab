package services

import (
	"time"

	"admission-workflow-api/models"
	"admission-workflow-api/utils"
)

const dateOfBirthLayout = "2006-01-02"

// ReviewableField describes one application field an administrator may flag
// for correction. The registry is the closed set of legal field names; a
// field name outside it is a validation error, never a stored key.
type ReviewableField struct {
	Name  string
	Label string
	Get   func(app *models.Application) string
	Set   func(app *models.Application, value string) error
}

var reviewableFields = []ReviewableField{
	{
		Name:  "student_first_name",
		Label: "Student First Name",
		Get:   func(a *models.Application) string { return a.StudentFirstName },
		Set:   func(a *models.Application, v string) error { a.StudentFirstName = v; return nil },
	},
	{
		Name:  "student_last_name",
		Label: "Student Last Name",
		Get:   func(a *models.Application) string { return a.StudentLastName },
		Set:   func(a *models.Application, v string) error { a.StudentLastName = v; return nil },
	},
	{
		Name:  "date_of_birth",
		Label: "Date of Birth",
		Get: func(a *models.Application) string {
			if a.DateOfBirth == nil {
				return ""
			}
			return a.DateOfBirth.Format(dateOfBirthLayout)
		},
		Set: func(a *models.Application, v string) error {
			if v == "" {
				a.DateOfBirth = nil
				return nil
			}
			parsed, err := time.Parse(dateOfBirthLayout, v)
			if err != nil {
				return models.NewValidationError("date_of_birth", "must be formatted YYYY-MM-DD")
			}
			a.DateOfBirth = &parsed
			return nil
		},
	},
	{
		Name:  "gender",
		Label: "Gender",
		Get:   func(a *models.Application) string { return a.Gender },
		Set:   func(a *models.Application, v string) error { a.Gender = v; return nil },
	},
	{
		Name:  "grade_applying",
		Label: "Grade Applying For",
		Get:   func(a *models.Application) string { return a.GradeApplying },
		Set:   func(a *models.Application, v string) error { a.GradeApplying = v; return nil },
	},
	{
		Name:  "previous_school",
		Label: "Previous School",
		Get:   func(a *models.Application) string { return a.PreviousSchool },
		Set:   func(a *models.Application, v string) error { a.PreviousSchool = v; return nil },
	},
	{
		Name:  "guardian_name",
		Label: "Guardian Name",
		Get:   func(a *models.Application) string { return a.GuardianName },
		Set:   func(a *models.Application, v string) error { a.GuardianName = v; return nil },
	},
	{
		Name:  "guardian_phone",
		Label: "Guardian Phone",
		Get:   func(a *models.Application) string { return a.GuardianPhone },
		Set:   func(a *models.Application, v string) error { a.GuardianPhone = v; return nil },
	},
	{
		Name:  "email",
		Label: "Contact Email",
		Get:   func(a *models.Application) string { return a.Email },
		Set: func(a *models.Application, v string) error {
			if v != "" && !utils.ValidateEmail(v) {
				return models.NewValidationError("email", "must be a valid email address")
			}
			a.Email = v
			return nil
		},
	},
	{
		Name:  "phone",
		Label: "Contact Phone",
		Get:   func(a *models.Application) string { return a.Phone },
		Set:   func(a *models.Application, v string) error { a.Phone = v; return nil },
	},
	{
		Name:  "address",
		Label: "Home Address",
		Get:   func(a *models.Application) string { return a.Address },
		Set:   func(a *models.Application, v string) error { a.Address = v; return nil },
	},
}

// ReviewableFields returns the registry in display order.
func ReviewableFields() []ReviewableField {
	return reviewableFields
}

// LookupReviewableField finds a registry entry by field name.
func LookupReviewableField(name string) (ReviewableField, bool) {
	for _, f := range reviewableFields {
		if f.Name == name {
			return f, true
		}
	}
	return ReviewableField{}, false
}
