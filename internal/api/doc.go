// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the generation and catalog services to
// HTTP and maps their errors to status codes without leaking internals.
package api
