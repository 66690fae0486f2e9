package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs the struct's validate tags. The returned error is
// turned into a 400 by ErrorHandlerMiddleware.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", e.Field(), e.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
