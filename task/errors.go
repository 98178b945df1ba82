package task

import "github.com/finlite/taskfocus/internal/apperr"

var (
	errEmptyText = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "task text must not be empty",
	}

	errUnknownTask = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "no task with id: %s",
	}

	errSubtaskDepth = &apperr.Error{
		Kind:    apperr.KindInvariant,
		Message: "subtasks cannot have subtasks of their own",
	}

	errToggleInFlight = &apperr.Error{
		Kind:    apperr.KindInvariant,
		Message: "a toggle for task %s is already in flight",
	}

	errCascadeWrite = &apperr.Error{
		Kind:    apperr.KindPersistence,
		Message: "task updated, but the cascading parent update failed",
	}

	errNotTopLevel = &apperr.Error{
		Kind:    apperr.KindInvariant,
		Message: "only top-level tasks can be reordered",
	}

	errSubtaskSection = &apperr.Error{
		Kind:    apperr.KindInvariant,
		Message: "subtasks always display under their parent",
	}

	errInvalidSection = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "unknown section: %s",
	}
)

// ErrCascadeWrite is matched by surfaces that want to report a partial
// cascade separately from a failed primary write.
var ErrCascadeWrite = errCascadeWrite
