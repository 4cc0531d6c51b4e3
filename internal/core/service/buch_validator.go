package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hska/buch-catalog/internal/core/domain"
)

var titlePattern = regexp.MustCompile(`^\w`)

// BuchValidator checks field constraints of a Buch before it is persisted.
type BuchValidator struct {
	v *validator.Validate
}

func NewBuchValidator() *BuchValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("leadingword", func(fl validator.FieldLevel) bool {
		return titlePattern.MatchString(fl.Field().String())
	})
	return &BuchValidator{v: v}
}

// Validate collects every violation of b. An existing Buch must also carry a
// UUID id. The result is nil or a *domain.ValidationError.
func (bv *BuchValidator) Validate(b *domain.Buch, isNew bool) error {
	fields := make(map[string]string)

	if !isNew {
		if _, err := uuid.Parse(b.ID); err != nil {
			fields["id"] = fmt.Sprintf("%q is not a valid id", b.ID)
		}
	}

	if err := bv.v.Struct(b); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = buchFieldError(fe)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

func buchFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "leadingword":
		return field + " must start with a letter, a digit or an underscore"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		if field == "rating" {
			return fmt.Sprintf("%v is not a valid rating (0..%d)", fe.Value(), domain.MaxRating)
		}
		return fmt.Sprintf("%s is out of range", field)
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "email":
		return fmt.Sprintf("%v is not a valid email address", fe.Value())
	case "url":
		return fmt.Sprintf("%v is not a valid URL", fe.Value())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
