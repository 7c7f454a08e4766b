package config

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aleister1102/scriptscan/internal/common"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return common.NewValidationError("config", nil, "configuration is nil")
	}

	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	// Every retried status must be a real HTTP status outside the success range
	_ = validate.RegisterValidation("statuscodes", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Slice {
			return false
		}
		codes, ok := fl.Field().Interface().([]int)
		if !ok {
			return false
		}
		for _, code := range codes {
			if code < http.StatusBadRequest || code > 599 {
				return false
			}
		}
		return true
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	if len(errs) == 1 {
		e := errs[0]
		return common.NewValidationError(fieldPath(e), e.Value(), describeRule(e))
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("'%s': %s", fieldPath(e), describeRule(e)))
	}
	return common.WrapError(common.ErrInvalidConfiguration, "configuration validation failed:\n  "+strings.Join(messages, "\n  "))
}

// fieldPath strips the root struct name, leaving e.g. "ScanConfig.Threads"
func fieldPath(e validator.FieldError) string {
	ns := e.StructNamespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describeRule(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	case "loglevel":
		return "must be one of: debug info warn error fatal panic"
	case "logformat":
		return "must be one of: console text json"
	case "statuscodes":
		return "must contain only HTTP status codes between 400 and 599"
	default:
		msg := "failed rule '" + e.Tag() + "'"
		if e.Param() != "" {
			msg += " (expected: " + e.Param() + ")"
		}
		return msg
	}
}
