package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/badoux/checkmail"

	"github.com/kartsetup/setupsheet/internal/submission"
)

// maxFieldLength bounds every free-text setup value.
const maxFieldLength = 2000

// CreateSubmissionRequest mirrors the identity part of a submission.
type CreateSubmissionRequest struct {
	UserEmail string `json:"userEmail" validate:"required,max=320"`
	FirstName string `json:"firstName" validate:"max=255"`
	LastName  string `json:"lastName" validate:"max=255"`
	TeamSlug  string `json:"teamSlug" validate:"required,max=100"`
}

// ValidateCreateSubmission validates the driver identity and the setup values.
func ValidateCreateSubmission(req CreateSubmissionRequest, setup *submission.Setup) []FieldError {
	errs := check(req)
	if req.UserEmail != "" {
		if err := checkmail.ValidateFormat(req.UserEmail); err != nil {
			errs = append(errs, FieldError{Field: "userEmail", Message: "userEmail must be a valid email address"})
		}
	}
	for _, f := range submission.Fields {
		errs = appendLength(errs, f.Name, f.Value(setup))
	}
	return errs
}

// ValidatePatch checks the length of every value a patch sets.
func ValidatePatch(patch *submission.Patch) []FieldError {
	var setup submission.Setup
	patch.Apply(&setup)

	var errs []FieldError
	for _, f := range submission.Fields {
		errs = appendLength(errs, f.Name, f.Value(&setup))
	}
	return errs
}

func appendLength(errs []FieldError, field, value string) []FieldError {
	if utf8.RuneCountInString(value) > maxFieldLength {
		errs = append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %d characters", field, maxFieldLength),
		})
	}
	return errs
}

// BulkDeleteRequest mirrors the body of POST /submissions/bulk-delete.
type BulkDeleteRequest struct {
	IDs      []string `json:"ids" validate:"required,min=1,max=500,dive,uuid"`
	TeamSlug string   `json:"teamSlug" validate:"required"`
}

// ValidateBulkDelete validates a bulk delete request.
func ValidateBulkDelete(req BulkDeleteRequest) []FieldError {
	return check(req)
}
