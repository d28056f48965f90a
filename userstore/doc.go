// Package userstore provides implementations of the credauth.UserStore
// contract: a Redis-backed document store for production wiring and an
// in-memory store for tests and examples.
//
// # Redis layout
//
// Each account is one JSON document under <prefix>:d:<id>, with a unique
// email index at <prefix>:e:<email> pointing back at the id. Inserts claim
// the email index and write the document in one Lua script; partial updates
// rewrite the document in a single script so concurrent writers always
// observe whole documents, never intermediate states.
package userstore
