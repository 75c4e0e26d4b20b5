package registry

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid input")

// ValidationError lists the failing fields by their stored name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// custom validation tags
const (
	rutTag      = "rut"
	clockTag    = "clock"
	passwordTag = "password"
)

var rutPattern = regexp.MustCompile(`^(\d{1,8})-([\dK])$`)

type validate struct {
	v          *validator.Validate
	translator ut.Translator
}

func newValidate() *validate {
	v := validator.New()

	// English messages for the built-in tags
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// Report stored field names rather than Go names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("bson"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation(rutTag, rutValidation)
	_ = v.RegisterValidation(clockTag, clockValidation)
	_ = v.RegisterValidation(passwordTag, passwordValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{rutTag, clockTag, passwordTag} {
		_ = v.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
	return &validate{v: v, translator: translator}
}

// Struct validates s and converts failures into a *ValidationError.
func (val *validate) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		// drop the Go type name that prefixes every namespace
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		out.Fields[field] = fe.Translate(val.translator)
	}
	return out
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case rutTag:
		return "must be a valid RUT"
	case clockTag:
		return "must be a time of day (HH:MM)"
	case passwordTag:
		return "must have 8 or more characters with lower and upper case letters, a digit and a symbol"
	default:
		return fe.Error()
	}
}

// rutValidation checks the format and the modulo-11 check digit of an
// already normalized RUT.
func rutValidation(fl validator.FieldLevel) bool {
	return ValidRUT(fl.Field().String())
}

// ValidRUT reports whether rut is "digits-DV" with a correct check digit.
func ValidRUT(rut string) bool {
	m := rutPattern.FindStringSubmatch(rut)
	if m == nil {
		return false
	}
	sum, factor := 0, 2
	body := m[1]
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	var dv string
	switch r := 11 - sum%11; r {
	case 11:
		dv = "0"
	case 10:
		dv = "K"
	default:
		dv = string(rune('0' + r))
	}
	return dv == m[2]
}

// clockValidation accepts "" so that it composes with required_if.
func clockValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func passwordValidation(fl validator.FieldLevel) bool {
	return StrongPassword(fl.Field().String())
}

// StrongPassword reports whether p has at least 8 characters including a
// lower-case letter, an upper-case letter, a digit and a symbol.
func StrongPassword(p string) bool {
	if len([]rune(p)) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
