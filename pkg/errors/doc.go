// Package errors provides structured errors with codes for simple-token.
//
// Every error the token engines return to a caller is an *Error carrying an
// ErrorCode. Handlers map the code to an HTTP status with HTTPStatusCode:
//
//	INVALID_FIELD        400  field not enabled for matching
//	USER_NOT_FOUND       404  lookup matched nobody
//	AMBIGUOUS_MATCH      409  lookup matched more than one identity
//	SERVICE_UNAVAILABLE  400  service disabled or unknown
//	MISSING_CAPABILITY   403  caller may not issue for the identity
//	INVALID_INPUT        400  malformed request parameters
//	INTERNAL_ERROR       500  store failures
//
// Usage:
//
//	if identity == nil {
//		return errors.NoSuchIdentity()
//	}
//
//	if errors.IsCode(err, errors.ErrCodeAmbiguousMatch) {
//		// ask the caller for a more specific field
//	}
//
// None of these errors are retried by the engines.
package errors
