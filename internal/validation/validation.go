package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/s/learnhub/internal/models"
)

var ErrInvalidInput = errors.New("invalid input")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// Field returns the message recorded for field, if any.
func (err ValidationError) Field(field string) (string, bool) {
	for _, f := range err.Fields {
		if f.Field == field {
			return f.Error, true
		}
	}
	return "", false
}

var (
	txRefTag  = "txref"
	txRefText = "{0} must be at least {1} characters long"

	itemTypeTag  = "itemtype"
	itemTypeText = "{0} must be either course or pdf"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	txRefMin   int
}

// New builds a validator whose messages use JSON field names. txRefMin is the
// minimum length of a payment transaction reference.
func New(txRefMin int) *Validator {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")

	v := &Validator{validate: validator.New(), translator: translator, txRefMin: txRefMin}
	_ = en_translations.RegisterDefaultTranslations(v.validate, translator)

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(txRefTag, v.txRefValidation)
	_ = v.validate.RegisterValidation(itemTypeTag, itemTypeValidation)

	v.registerTranslation(txRefTag, txRefText, strconv.Itoa(txRefMin))
	v.registerTranslation(itemTypeTag, itemTypeText)
	v.registerTranslation(requiredTag, requiredText)
	return v
}

func (v *Validator) registerTranslation(tag, text string, params ...string) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, append([]string{fe.Field()}, params...)...)
			return s
		},
	)
}

// Struct validates s and returns a *ValidationError listing every bad field.
func (v *Validator) Struct(s interface{}) error {
	return v.translate(v.validate.Struct(s))
}

func (v *Validator) translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError(ErrInvalidInput)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(v.translator)})
	}
	return NewValidationError(ErrInvalidInput, fields...)
}

// txRefValidation requires TxRefMin non-blank characters.
func (v *Validator) txRefValidation(fl validator.FieldLevel) bool {
	return len([]rune(strings.TrimSpace(fl.Field().String()))) >= v.txRefMin
}

func itemTypeValidation(fl validator.FieldLevel) bool {
	return models.ItemType(fl.Field().String()).Valid()
}

// StructExcept validates s while skipping the named fields.
func (v *Validator) StructExcept(s interface{}, fields ...string) error {
	return v.translate(v.validate.StructExcept(s, fields...))
}
