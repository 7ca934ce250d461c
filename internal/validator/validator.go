package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// tagName matches the struct tag gin validates with, so service-layer
// validation applies the same constraints as request binding
const tagName = "binding"

var (
	instance *govalidator.Validate
	once     sync.Once
)

// ValidationError reports that a request violated an input constraint
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return Describe(e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Register installs the field name and custom type hooks on v
func Register(v *govalidator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

// RegisterGin installs the hooks on gin's default validator
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	Register(v)
	return nil
}

// Struct validates s against its binding tags
func Struct(s any) error {
	once.Do(func() {
		instance = govalidator.New()
		instance.SetTagName(tagName)
		Register(instance)
	})

	if err := instance.Struct(s); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// Describe renders a validation or binding error for the operator
func Describe(err error) string {
	var fieldErrs govalidator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeField(fe))
	}
	return strings.Join(messages, "; ")
}

func describeField(fe govalidator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %s constraint", fe.Field(), fe.Tag())
	}
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}
