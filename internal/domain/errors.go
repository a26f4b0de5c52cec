// internal/domain/errors.go
package domain

import "errors"

var (
	// ErrInvalidConfig is returned when the configuration is missing or malformed.
	// A pass never starts with a partially loaded policy.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEnumeration is returned when the inbound or output root cannot be read.
	ErrEnumeration = errors.New("enumeration failed")

	// ErrNoEligibleWorker marks an item no worker accepts in the current pass.
	ErrNoEligibleWorker = errors.New("no eligible worker")

	// ErrRelocation marks an item whose move failed.
	ErrRelocation = errors.New("relocation failed")

	// ErrTargetExists is returned when the destination file is already present.
	ErrTargetExists = errors.New("target already exists")

	// ErrPassNotFound is returned when a pass record is not found.
	ErrPassNotFound = errors.New("pass not found")
)
