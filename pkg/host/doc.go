// Package host models the runtime APIs hooks consume from their embedder:
// a cooperative task loop with idle callbacks, timers, window focus and
// visibility, pointer events, document style variables and key/value
// storage.
//
// Everything a hook touches is reached through an Env. An Env is provided on
// a reactive.Owner and looked up by hooks through Current; code running
// outside any owner gets the process default.
//
// Host objects deliver events synchronously on the goroutine that produced
// them. Embedders (the websocket bridge, the TUI, tests) feed events through
// Loop.Dispatch so hook state is only touched from the loop goroutine.
package host
