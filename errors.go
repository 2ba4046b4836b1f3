package dbadmin

import "github.com/koustreak/dbadmin/internal/errs"

// Error predicates, re-exported so callers can classify failures without
// importing internal packages.

// IsNotFound reports whether err represents a missing database or table.
func IsNotFound(err error) bool { return errs.IsNotFound(err) }

// IsAlreadyExists reports whether err was caused by creating a database
// that is already there.
func IsAlreadyExists(err error) bool { return errs.IsAlreadyExists(err) }

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool { return errs.IsConnectionFailed(err) }

// IsTimeout reports whether err was caused by a deadline or context
// cancellation.
func IsTimeout(err error) bool { return errs.IsTimeout(err) }

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool { return errs.IsQueryFailed(err) }

// IsInvalidInput reports whether err was caused by a malformed URL or bad
// arguments.
func IsInvalidInput(err error) bool { return errs.IsInvalidInput(err) }

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool { return errs.IsPermissionDenied(err) }

// IsUnsupported reports whether err marks an operation the target dialect
// cannot perform.
func IsUnsupported(err error) bool { return errs.IsUnsupported(err) }
