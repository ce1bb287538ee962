// Package config defines the alarm service settings and provides helpers to
// load, validate and save them in YAML format.
//
// Settings cover the scanner (interval, stop margin), logging, the optional
// MQTT broker used for messaging and presence, and the properties seeded at
// startup.
package config
