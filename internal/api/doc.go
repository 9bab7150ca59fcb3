// Package api is the typed client for the video platform REST API.
//
// Client wraps every endpoint the platform exposes. Outbound requests go
// through an authenticating transport that attaches the bearer access
// token and transparently exchanges the refresh token on a 401,
// replaying the original request once with the rotated pair. Concurrent
// 401s share a single refresh call.
package api
