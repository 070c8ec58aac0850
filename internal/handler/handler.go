// Package handler is the first layer after the router.
//
// It binds and validates requests with the validation package, calls the
// service layer, and writes the JSON response. Errors are returned
// unchanged to the global error handler.
package handler
