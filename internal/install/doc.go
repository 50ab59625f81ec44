// Package install publishes populated directories atomically and
// verifies installed bundle layouts.
//
// The population step (typically archive extraction) always runs inside
// a fresh temporary directory; the result is moved into place only when
// complete, so a failed install never disturbs an existing one.
package install
