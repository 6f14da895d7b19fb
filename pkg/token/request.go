package token

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	tokenerrors "github.com/tendant/simple-token/pkg/errors"
)

// Request holds the get-token parameters. IDValue may be empty.
type Request struct {
	IDType  string `json:"idtype" validate:"required,max=100"`
	IDValue string `json:"idvalue" validate:"max=255"`
	Service string `json:"service" validate:"required,max=100"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest maps the first validation failure to an INVALID_INPUT error
func validateRequest(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return tokenerrors.InvalidInput("request", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return tokenerrors.InvalidInput(fe.Field(), "is required")
	case "max":
		return tokenerrors.InvalidInput(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	default:
		return tokenerrors.InvalidInput(fe.Field(), fe.Tag())
	}
}
