// Package property implements the in-memory property store.
//
// The Store is the single mutation surface for property state: every
// transition (install, uninstall, disarm, trigger) happens under one lock,
// so no caller can observe a half-applied combination such as an installed
// alarm without a brand code. State lives for the process lifetime only.
package property
