package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/myadmit/admit-backend/internal/model"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		en_translations.RegisterDefaultTranslations(v, trans)

		registerDomainRules(v)
	}
}

// enumRule is a custom tag backed by a Valid() check and its error text.
type enumRule struct {
	tag     string
	message string
	valid   func(string) bool
}

var domainRules = []enumRule{
	{
		tag:     "limittype",
		message: "{0} must be one of Word, Char or None",
		valid:   func(s string) bool { return model.LimitType(s).Valid() },
	},
	{
		tag:     "answerstatus",
		message: "{0} must be one of not_started, started or finished",
		valid:   func(s string) bool { return model.AnswerStatus(s).Valid() },
	},
	{
		tag:     "doctype",
		message: "{0} must be a supported document type",
		valid:   func(s string) bool { return model.DocumentType(s).Valid() },
	},
}

func registerDomainRules(v *govalidator.Validate) {
	for _, rule := range domainRules {
		rule := rule
		_ = v.RegisterValidation(rule.tag, func(fl govalidator.FieldLevel) bool {
			return rule.valid(fl.Field().String())
		})
		_ = v.RegisterTranslation(rule.tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(rule.tag, rule.message, true)
			},
			func(ut ut.Translator, fe govalidator.FieldError) string {
				msg, _ := ut.T(rule.tag, fe.Field())
				return msg
			},
		)
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindForm binds and validates multipart or urlencoded form fields into dst.
func BindForm(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBind(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
