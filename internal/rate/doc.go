// Package rate provides the Redis-backed fixed-window counters behind the
// engine's optional sign-in throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - se:  — sign-in per-email
//   - si:  — sign-in per-IP
//
// # What this package must NOT do
//
//   - Decide authentication policy (the Engine maps throttle errors).
//   - Be imported outside the credauth module.
package rate
