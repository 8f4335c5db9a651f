// Package errors provides structured error handling with error codes for idm-portal.
//
// Every service returns *Error values with a stable ErrorCode so the HTTP layer
// can map them with MapErrorCodeToHTTPStatus. Underlying causes stay reachable
// through errors.Is and errors.As.
//
//	err := errors.ApplicationNotExist(app.ClientID)
//	if errors.IsCode(err, errors.ErrCodeApplicationNotExist) {
//		// ...
//	}
package errors
