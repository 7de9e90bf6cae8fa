// Package validate wraps go-playground/validator with english messages and perr mapping
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "codecorpus/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// messages overrides the stock english text for tags the pipelines rely on
// params are the field name then the tag parameter
var messages = map[string]string{
	"min":      "{0} must be at least {1}",
	"max":      "{0} must be at most {1}",
	"location": "{0} must be a local path or an s3://bucket/key uri",
}

type engine struct {
	v     *validator.Validate
	trans ut.Translator
}

// shared is built on first use; field names come from yaml tags, then json tags, then the Go name
var shared = sync.OnceValue(func() engine {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	_ = v.RegisterValidation("location", isLocation)
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	for tag, text := range messages {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return engine{v: v, trans: trans}
})

// Struct validates v and returns a Validation error carrying the first offending field
// as its dotted path below the root struct, e.g. "training.learning_rate"
func Struct(v any) error {
	err := shared().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validator misuse")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
}

// FieldAndMessage returns the first field path and its translated message
func FieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &verrs) && len(verrs) > 0:
		_, path, _ := strings.Cut(verrs[0].Namespace(), ".")
		return path, verrs[0].Translate(shared().trans)
	}
	return "", err.Error()
}

func tagName(fld reflect.StructField) string {
	for _, key := range [...]string{"yaml", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// isLocation accepts a local path or an s3://bucket[/key] uri
func isLocation(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if rest, ok := strings.CutPrefix(s, "s3://"); ok {
		bucket, _, _ := strings.Cut(rest, "/")
		return bucket != ""
	}
	return s != ""
}
