package store

import (
	"errors"

	"github.com/Harshitk-cp/sahai/internal/domain"
)

var (
	ErrNotFound = domain.ErrNotFound
	ErrConflict = errors.New("conflict")
)
