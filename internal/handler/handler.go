// Package handler is the HTTP layer. Handlers bind and validate requests
// through the validation package, call the services and write responses.
package handler
