// Package api exposes subscriptions and billing over HTTP with chi.
//
// Routes:
//
//	GET  /health/live                 liveness
//	GET  /health/ready                readiness over the configured checks
//	POST /v1/billing/webhook          provider deliveries, rate limited per client IP
//	POST /v1/subscriptions            create            (bearer token)
//	POST /v1/subscriptions/renew      renew             (bearer token)
//	POST /v1/subscriptions/cancel     cancel            (bearer token)
//	GET  /v1/subscriptions/status     status and tier   (bearer token)
//	GET  /v1/billing/plans            plan catalog      (bearer token)
//	POST /v1/billing/checkout         hosted checkout   (bearer token)
//	GET  /v1/billing/payments         payment history   (bearer token)
//	*    /v1/practice/...             behind subscription.RequireAccess
//
// Responses use {"data": ...} on success and
// {"error": {"code", "message", "details", "request_id"}} on failure.
package api
