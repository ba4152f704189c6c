package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"curbside/pkg/logger"
	"curbside/pkg/model"
	"curbside/pkg/slots"

	"github.com/go-playground/validator/v10"
)

// Deliberately loose: the app collects numbers in whatever format the user
// types; normalization happens in the sanitizer, not here.
var loosePhoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type RequestValidator struct {
	validate *validator.Validate
	window   *slots.Window
	maxNotes int
	logger   *logger.Logger
}

func NewRequestValidator(window *slots.Window, maxNotes int, log *logger.Logger) *RequestValidator {
	v := validator.New()

	if err := v.RegisterValidation("loose_phone", validateLoosePhone); err != nil {
		log.Fatal("Failed to register 'loose_phone' validator", "error", err)
	}

	if err := v.RegisterValidation("slot_label", func(fl validator.FieldLevel) bool {
		return window.Contains(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'slot_label' validator", "error", err)
	}

	if err := v.RegisterValidation("notes_limit", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= maxNotes
	}); err != nil {
		log.Fatal("Failed to register 'notes_limit' validator", "error", err)
	}

	return &RequestValidator{
		validate: v,
		window:   window,
		maxNotes: maxNotes,
		logger:   log,
	}
}

func validateLoosePhone(fl validator.FieldLevel) bool {
	return loosePhoneRegex.MatchString(fl.Field().String())
}

// Validate performs the local shape checks that must pass before any store
// call is made.
func (v *RequestValidator) Validate(req *model.PickupRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateSlot checks a date/time pair on its own, used by reschedule where
// only the schedule fields change.
func (v *RequestValidator) ValidateSlot(date, timeLabel string) error {
	var errs ValidationErrors

	if err := v.validate.Var(date, "required,datetime=2006-01-02"); err != nil {
		errs = append(errs, ValidationError{
			Field:   "Date",
			Message: "date must be a calendar date in YYYY-MM-DD format",
		})
	}
	if !v.window.Contains(timeLabel) {
		errs = append(errs, ValidationError{
			Field:   "Time",
			Message: fmt.Sprintf("time must be one of: %s", strings.Join(v.window.Labels(), ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *RequestValidator) ValidateCancelMeta(meta *model.CancelMeta) error {
	if err := v.validate.Struct(meta); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RequestValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "loose_phone":
			message = fmt.Sprintf("%s must look like a phone number", err.Field())
		case "slot_label":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(v.window.Labels(), ", "))
		case "notes_limit":
			message = fmt.Sprintf("%s must be at most %d characters", err.Field(), v.maxNotes)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
