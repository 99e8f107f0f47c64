package books

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the request against the catalogue's field rules. It returns
// a *ValidationError naming every rejected field.
func (r CreateRequest) Validate() error {
	r.CoverImageURL = blankToNil(r.CoverImageURL)
	return structErrors(validatorInstance().Struct(r))
}

// Validate checks the fields present in the update.
func (r UpdateRequest) Validate() error {
	if r.IsEmpty() {
		return ErrEmptyUpdate
	}
	r.CoverImageURL = blankToNil(r.CoverImageURL)
	return structErrors(validatorInstance().Struct(r))
}

func structErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return &ValidationError{Fields: fields}
}

// blankToNil treats an explicitly empty cover URL as absent; clearing the
// cover is allowed.
func blankToNil(s *string) *string {
	if s != nil && strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
