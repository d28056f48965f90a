// Package jwt provides a stateless session token alternative to the
// Redis-backed session store: signed tokens carrying the user id and the
// provider that established the session, parsed back with strict
// validation.
package jwt
