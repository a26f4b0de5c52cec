package config

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"holter-distributor/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("ddmmyyyy", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DayLayout, fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("station", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) == 2
	})

	return v
}

// describe flattens validator errors into one readable line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, "field '"+e.Namespace()+"' failed on the '"+e.Tag()+"' tag")
	}
	return strings.Join(msgs, "; ")
}
