// Package client contains the transports of the gophgate chat client.
//
// AuthClient talks to the HTTP API (register, login, token refresh) and
// returns a Session holding the bearer token. PresenceClient opens the
// presence stream with that token in the "authentication" metadata header
// and exposes it as a Stream of decoded envelopes.
//
// # Error Handling
//
// HTTP failures surface as *APIError, which matches ErrUnauthorized for 401
// responses. Transport failures match ErrUnavailable. A presence stream the
// server refused ends with io.EOF on the first Recv, exactly like a normal
// server-side close.
package client
