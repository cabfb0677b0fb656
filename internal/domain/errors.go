package domain

import "errors"

var (
	// ErrDuplicateAccount is returned when an account with the same derived id exists.
	ErrDuplicateAccount = errors.New("do not allow duplicate accounts")
	// ErrAccountNotFound is returned when an id does not match any stored account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnknownServiceType is returned by the document service factory.
	ErrUnknownServiceType = errors.New("unknown document service type")
	// ErrExtensionNotFound is returned when no registered extension has the requested name.
	ErrExtensionNotFound = errors.New("extension not found")
	// ErrNoActiveTab is returned when page messaging has no tab to talk to.
	ErrNoActiveTab = errors.New("no active tab")
)
