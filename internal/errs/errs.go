// Package errs defines the error shape the API returns to clients.
//
// Every failure that reaches the HTTP layer ends up as an *HTTPError, so
// clients always get the same JSON body: a machine code, a message, the
// status, and optionally a list of field errors or extra details.
package errs
