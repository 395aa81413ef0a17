// Package domain computes the numeric display range of a visualization.
//
// ComputeDomain reduces values to a [min, max] Domain valid for a ScaleType:
// non-finite values are ignored and a Log domain that straddles zero is
// clamped to the smallest strictly positive value. ExtendDomain pads a
// domain for axis display.
//
// User overrides are merged by VisDomain and made safe for the active scale
// by SafeDomain, which never fails: unusable bounds fall back to the data
// range and the fallback is reported as Warnings.
//
// A Tracker holds this state for one visualization and suspends the user
// override for exactly one read after the data domain changes.
package domain
