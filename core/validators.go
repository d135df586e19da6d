package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	gradeTag  = "grade"
	gradeText = "{0} must be one of the configured grade levels"

	semesterTag  = "semester"
	semesterText = "{0} must be 1 or 2"

	schoolYearTag   = "schoolyear"
	schoolYearText  = "{0} must be a school year code like 2025 or 2025-2026"
	schoolYearRegex = regexp.MustCompile(`^\d{4}(-\d{4})?$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(semesterTag, semesterValidation)
	RegisterCustomTranslation(validate, translator, semesterTag, semesterText)

	_ = validate.RegisterValidation(schoolYearTag, schoolYearValidation)
	RegisterCustomTranslation(validate, translator, schoolYearTag, schoolYearText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func gradeValidation(fl validator.FieldLevel) bool {
	return IsGrade(int(fl.Field().Int()))
}

func semesterValidation(fl validator.FieldLevel) bool {
	return IsSemester(int(fl.Field().Int()))
}

func schoolYearValidation(fl validator.FieldLevel) bool {
	return schoolYearRegex.MatchString(fl.Field().String())
}

func IsSchoolYear(year string) bool {
	return schoolYearRegex.MatchString(year)
}

// ValidateSchoolYear checks a school year code outside of struct validation.
func ValidateSchoolYear(year string) error {
	if !IsSchoolYear(year) {
		return NewValidationError(nil, FieldError{Field: "year", Error: "year must be a school year code like 2025 or 2025-2026"})
	}
	return nil
}
