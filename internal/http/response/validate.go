package response

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// NewValidator создает валидатор, который называет поля по их JSON-тегам.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
