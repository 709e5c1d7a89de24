package domain

import "errors"

var (
	// ErrTaskNotFound is returned when a task does not exist or is not visible to the caller
	ErrTaskNotFound = errors.New("task not found")

	// ErrForbidden is returned when the caller does not own a task it tries to modify
	ErrForbidden = errors.New("not allowed to modify this task")

	// ErrSubtaskAlreadyLinked is returned when a child is already in the parent's subtask list
	ErrSubtaskAlreadyLinked = errors.New("subtask already exists in main task")

	// ErrSubtaskNotLinked is returned when a child is not in the parent's subtask list
	ErrSubtaskNotLinked = errors.New("subtask not found in main task")

	// ErrSelfReference is returned when a task is linked as its own subtask
	ErrSelfReference = errors.New("a task cannot be its own subtask")

	// ErrInvalidTask wraps every field-level validation failure
	ErrInvalidTask = errors.New("invalid task")

	// ErrIncompleteDelete is returned when a batch delete removed fewer records than requested
	ErrIncompleteDelete = errors.New("deleted fewer tasks than requested")
)
