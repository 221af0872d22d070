// Package state keeps the in-memory per-user session of the bot. Sessions
// live for the lifetime of the process and are lost on restart.
package state
