// Package types provides type definitions for structured data used throughout the cv-assistant system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names as stored in the form store and used on the CLI and HTTP API.
const (
	FieldCVContent       = "cvContent"
	FieldCompanyName     = "companyName"
	FieldPositionTitle   = "positionTitle"
	FieldJobRequirements = "jobRequirements"
	FieldJobDescription  = "jobDescription"
)

// FieldNames returns the five form field names in display order.
func FieldNames() []string {
	return []string{
		FieldCVContent,
		FieldCompanyName,
		FieldPositionTitle,
		FieldJobRequirements,
		FieldJobDescription,
	}
}

// FormFields holds the résumé text and the target job's details.
type FormFields struct {
	CVContent       string `json:"cvContent" validate:"notblank"`
	CompanyName     string `json:"companyName" validate:"notblank"`
	PositionTitle   string `json:"positionTitle" validate:"notblank"`
	JobRequirements string `json:"jobRequirements" validate:"notblank"`
	JobDescription  string `json:"jobDescription" validate:"notblank"`
}

// FieldsError lists the form fields that are empty after trimming.
type FieldsError struct {
	Missing []string
}

func (e *FieldsError) Error() string {
	return fmt.Sprintf("required fields are empty: %s", strings.Join(e.Missing, ", "))
}

// UnknownFieldError is returned when a field name is not one of FieldNames.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown form field: %q", e.Name)
}

var fieldsValidator = newFieldsValidator()

func newFieldsValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("failed to register notblank validation: %v", err))
	}
	return v
}

// Validate checks that every field is non-empty after trimming.
func (f *FormFields) Validate() error {
	err := fieldsValidator.Struct(f)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate form fields: %w", err)
	}
	missing := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		missing = append(missing, fe.Field())
	}
	return &FieldsError{Missing: missing}
}

// Get returns the value of the named field.
func (f *FormFields) Get(name string) (string, error) {
	switch name {
	case FieldCVContent:
		return f.CVContent, nil
	case FieldCompanyName:
		return f.CompanyName, nil
	case FieldPositionTitle:
		return f.PositionTitle, nil
	case FieldJobRequirements:
		return f.JobRequirements, nil
	case FieldJobDescription:
		return f.JobDescription, nil
	default:
		return "", &UnknownFieldError{Name: name}
	}
}

// Set assigns the value of the named field.
func (f *FormFields) Set(name, value string) error {
	switch name {
	case FieldCVContent:
		f.CVContent = value
	case FieldCompanyName:
		f.CompanyName = value
	case FieldPositionTitle:
		f.PositionTitle = value
	case FieldJobRequirements:
		f.JobRequirements = value
	case FieldJobDescription:
		f.JobDescription = value
	default:
		return &UnknownFieldError{Name: name}
	}
	return nil
}

// Map returns the fields keyed by field name.
func (f *FormFields) Map() map[string]string {
	return map[string]string{
		FieldCVContent:       f.CVContent,
		FieldCompanyName:     f.CompanyName,
		FieldPositionTitle:   f.PositionTitle,
		FieldJobRequirements: f.JobRequirements,
		FieldJobDescription:  f.JobDescription,
	}
}
