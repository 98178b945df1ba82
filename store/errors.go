package store

import "github.com/finlite/taskfocus/internal/apperr"

var (
	errAlreadyRunning = &apperr.Error{
		Message: "is taskfocus already running? Only one instance can be active at a time",
	}

	errFetchTasks = &apperr.Error{
		Message: "unable to fetch tasks",
		Kind:    apperr.KindPersistence,
	}

	errWriteTask = &apperr.Error{
		Message: "unable to write task",
		Kind:    apperr.KindPersistence,
	}

	errTaskExists = &apperr.Error{
		Message: "a task with id %s already exists",
		Kind:    apperr.KindPersistence,
	}

	errTaskNotFound = &apperr.Error{
		Message: "task %s not found",
		Kind:    apperr.KindPersistence,
	}
)
