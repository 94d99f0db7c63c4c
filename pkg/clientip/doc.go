// Package clientip resolves the originating client address of an HTTP request
// behind reverse proxies.
//
// Headers are checked in order: CF-Connecting-IP, X-Forwarded-For (first valid
// entry), X-Real-IP. RemoteAddr is the fallback. Invalid values are skipped and
// IPv4-mapped IPv6 addresses are reported in their IPv4 form.
//
//	r.Use(clientip.Middleware)
//	ip := clientip.GetIPFromContext(r.Context())
//
// Only deploy behind proxies that overwrite these headers; otherwise clients can
// spoof them.
package clientip
