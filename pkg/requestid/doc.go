// Package requestid tags every HTTP request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID header from the caller, which
// lets a provider's webhook delivery id flow into our logs, and otherwise
// generates a UUID. The id is echoed in the response and stored in the request
// context, where LoggerExtractor picks it up for every log record.
package requestid
