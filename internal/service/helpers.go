package service

import (
	"errors"
	"skillpath_backend/internal/util"

	"gorm.io/gorm"
)

// lookupErr turns a repository error into notFound, or a persistence failure for anything else.
func lookupErr(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return util.Persistence(op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func strPtr(s string) *string {
	return &s
}
