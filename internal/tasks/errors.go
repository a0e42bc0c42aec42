package tasks

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrTaskNotFound     = fmt.Errorf("task %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrIndexOutOfRange  = fmt.Errorf("%w: index out of range", ErrInvalidArgument)
	ErrNotAPermutation  = fmt.Errorf("%w: ids must list every task exactly once", ErrInvalidArgument)
	ErrDuplicateID      = fmt.Errorf("%w: duplicate id", ErrInvalidArgument)
	ErrIDGeneration     = errors.New("failed to generate id")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}
