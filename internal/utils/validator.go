package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/phishguard/awareness-service/internal/errors"
	"github.com/phishguard/awareness-service/internal/models"
)

// Validator wraps go-playground/validator with the platform's custom tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags and returns field-level errors suitable for
// inline display.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("campaign_type", validateCampaignType)
	validate.RegisterValidation("sim_event_type", validateSimEventType)

	// Report JSON field names so messages line up with the wire shape.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleEmployee, models.RoleAdmin:
		return true
	}
	return false
}

func validateCampaignType(fl validator.FieldLevel) bool {
	switch models.CampaignType(fl.Field().String()) {
	case models.CampaignFakeLogin, models.CampaignSpearPhishing, models.CampaignSmishing:
		return true
	}
	return false
}

func validateSimEventType(fl validator.FieldLevel) bool {
	switch models.SimEventType(fl.Field().String()) {
	case models.EventOpened, models.EventClicked, models.EventReported, models.EventDownloaded:
		return true
	}
	return false
}
