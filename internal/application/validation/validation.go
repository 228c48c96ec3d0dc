// Package validation checks operation inputs with struct tags and marks
// every input failure with ErrInvalid.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"primefit/internal/domain/account"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/payment"
)

// ErrInvalid marks errors caused by bad input.
var ErrInvalid = errors.New("invalid input")

// FieldErrors maps JSON field names to messages.
type FieldErrors struct {
	Fields map[string]string `json:"errors"`
}

// Error lists the failing fields in a stable order.
func (e *FieldErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// Unwrap lets errors.Is(err, ErrInvalid) match.
func (e *FieldErrors) Unwrap() error { return ErrInvalid }

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		oneOf := func(ok func(string) bool) validator.Func {
			return func(fl validator.FieldLevel) bool { return ok(fl.Field().String()) }
		}
		validate.RegisterValidation("classtype", oneOf(booking.IsValidClassType))
		validate.RegisterValidation("bookingstatus", oneOf(booking.IsValidStatus))
		validate.RegisterValidation("paymentstatus", oneOf(payment.IsValidStatus))
		validate.RegisterValidation("role", oneOf(account.IsValidRole))
		validate.RegisterValidation("expensetype", oneOf(func(s string) bool {
			return s == expense.TypeEquipment || s == expense.TypeRent || s == expense.TypeUtilities || s == expense.TypeOther
		}))
		validate.RegisterValidation("channel", oneOf(func(s string) bool {
			return s == communication.ChannelSMS || s == communication.ChannelWhatsApp || s == communication.ChannelEmail
		}))
	})
	return validate
}

// Struct validates v's tags.
// POST: Returns nil or a *FieldErrors wrapping ErrInvalid
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &FieldErrors{Fields: fields}
}

// Invalid marks a domain validation error as bad input.
func Invalid(err error) error {
	if err == nil || errors.Is(err, ErrInvalid) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "url":
		return f + " must be a valid URL"
	default:
		return f + " is invalid"
	}
}
