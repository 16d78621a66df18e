// Package session holds the per-session state owned by the agent loop and the
// system prompt assembly performed on every (re)initialization.
//
// A State is mutated only by the agent's lifecycle operations (Init, Reset,
// Clear) and by the instruction loop, which records the active instruction on
// the first turn of a session.
package session
