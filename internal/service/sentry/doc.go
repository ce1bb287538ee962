// Package sentry assembles the alarm service: configuration, registry,
// messaging, the detection engine and the command surface.
package sentry
