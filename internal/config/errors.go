package config

import "github.com/finlite/taskfocus/internal/apperr"

var (
	errInitFailed = &apperr.Error{
		Message: "unable to initialise taskfocus settings from the configuration file",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidDuration = &apperr.Error{
		Message: "focus duration %d is invalid: must be between %d and %d minutes",
		Kind:    apperr.KindValidation,
	}
)
