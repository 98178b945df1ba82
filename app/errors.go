package app

import "github.com/finlite/taskfocus/internal/apperr"

var (
	errNoMatch = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "no task matches %q",
	}

	errAmbiguous = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "%q matches %d tasks, use a longer prefix or the full id",
	}

	errMissingArg = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "missing argument: %s",
	}

	errBadDate = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "unable to parse %q as a date",
	}

	errBadSection = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "unknown section %q: use today, this_week, or this_month",
	}

	errBadFilter = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "unknown filter %q: use all, parent-only, or standalone-only",
	}

	errBadViewMode = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "unknown view mode %q: use time-based or parent-based",
	}
)
