package timer

import "github.com/finlite/taskfocus/internal/apperr"

var (
	errNoTask = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "a focus session needs a task",
	}

	errInvalidDuration = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "duration %d is out of range: must be between %d and %d minutes",
	}

	errInvalidSoundFormat = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "sound file must be in mp3, ogg, flac, or wav format",
	}
)
