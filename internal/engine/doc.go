// Package engine implements the alarm detection engine: the periodic
// proximity scan over armed properties, rising-edge presence tracking, the
// trigger path with its per-brand cooldown gate, and the stop-alarm
// operation.
//
// One background goroutine runs the scan loop; command handlers call
// StopAlarm concurrently. All shared property and event state lives behind
// the store and log locks, so a tick and a command can never observe a
// half-applied transition.
package engine
