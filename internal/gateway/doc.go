// Package gateway is the HTTP implementation of pitch.Gateway.
//
// Every request carries an X-Request-Id (taken from the context when set,
// otherwise a fresh UUID) and, when configured, a bearer token. Non-2xx
// replies become *StatusError; network failures are tagged with
// services.ErrTransport. Response bodies are decoded into pitch.Body and
// left for the session to interpret.
package gateway
