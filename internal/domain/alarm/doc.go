// Package alarm contains core domain types for the property alarm business logic.
//
// It defines Position (a flat 3D point), Property (a registered property and
// its alarm sub-state), Event (one audit record per successful trigger) and
// the sentinel errors shared by the stores and the detection engine. Clone
// helpers avoid leaking internal references out of the stores.
package alarm
