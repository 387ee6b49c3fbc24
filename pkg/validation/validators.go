package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters, spaces and common name punctuation: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L} .'/&(),-]+$`)

	// E164-like phone: optional +, 7-15 digits
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// New returns a validator with the custom tags registered and field names
// reported by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("slug", ValidSlug)
}

// ValidName rejects digits and most symbols. Empty passes; pair with required.
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NoEmoji rejects supplementary-plane characters and symbol categories.
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 || unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// ValidSlug accepts lowercase letters, digits and hyphens.
func ValidSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}
