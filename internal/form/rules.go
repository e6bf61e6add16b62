// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package form

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()

	// English messages for the built-in tags.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Rule builds a field validator from a validator tag such as "email",
// "min=6" or "url". An empty message falls back to the library's English
// text, which the form prefixes with the field label.
func Rule(tag, message string) func(string) string {
	return func(value string) string {
		err := validate.Var(value, tag)
		if err == nil {
			return ""
		}
		if message != "" {
			return message
		}
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return strings.TrimSpace(errs[0].Translate(translator))
		}
		return "is invalid"
	}
}

// Optional wraps rule so an empty value passes.
func Optional(rule func(string) string) func(string) string {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return ""
		}
		return rule(value)
	}
}

func blank(value string) bool {
	return validate.Var(value, notBlankTag) != nil
}
