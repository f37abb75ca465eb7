package service

import (
	"errors"

	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
)

// repoError turns a repository failure into the AppError handlers expect.
// Errors that already are AppErrors pass through untouched.
func repoError(err error, notFound, failure string) error {

	if _, ok := appErrors.IsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.NotFoundError(notFound).WithError(err)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.DuplicateEntryError("Record already exists").WithError(err)
	}

	return appErrors.DatabaseError(failure).WithError(err)
}

func stockError(err error) (*appErrors.AppError, bool) {
	if errors.Is(err, repository.ErrInsufficientStock) {
		return appErrors.ConflictError("Insufficient stock").WithError(err), true
	}
	return nil, false
}
