// Package synckit is a set of synchronization primitives built from atomic
// operations and a futex-style wait/wake facility.
//
// The primitives live in subpackages:
//
//	spinlock  busy-waiting lock
//	mutex     blocking lock over a futex word
//	condvar   condition variable paired with a mutex guard
//	rwlock    reader-writer lock
//	oneshot   single-use rendezvous channel
//	arc       atomically reference-counted handles with weak references
//
// This package only reports version and runtime information.
package synckit

import (
	"fmt"
	"runtime"

	"golang.org/x/mod/semver"

	"github.com/kolkov/synckit/internal/futex"
)

// Version information for synckit.
const (
	// Version is the current version in semver form.
	Version = "v0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the library.
type Info struct {
	// Version is the library version string.
	Version string

	// GoVersion is the Go runtime the binary was built with.
	GoVersion string

	// FutexBackend names the wait/wake implementation in use:
	// "futex" for the Linux system call, "emulated" otherwise.
	FutexBackend string
}

// GetInfo returns information about the library and its runtime.
//
// Example:
//
//	info := synckit.GetInfo()
//	fmt.Printf("synckit %s (%s)\n", info.Version, info.FutexBackend)
func GetInfo() Info {
	return Info{
		Version:      Version,
		GoVersion:    runtime.Version(),
		FutexBackend: futex.Backend(),
	}
}

// Require reports an error unless Version satisfies minimum. minimum may be
// given with or without the leading "v" and may omit minor and patch.
func Require(minimum string) error {
	want := minimum
	if want != "" && want[0] != 'v' {
		want = "v" + want
	}
	if !semver.IsValid(want) {
		return fmt.Errorf("invalid version requirement %q", minimum)
	}
	if semver.Compare(Version, want) < 0 {
		return fmt.Errorf("synckit %s does not satisfy %s", Version, semver.Canonical(want))
	}
	return nil
}

// Compatible reports whether a caller built against version v can use this
// release: same major version and not newer than Version. For v0 releases
// the minor version must match too.
func Compatible(v string) bool {
	if !semver.IsValid(v) {
		return false
	}
	if semver.Compare(v, Version) > 0 {
		return false
	}
	if semver.Major(Version) == "v0" {
		return semver.MajorMinor(v) == semver.MajorMinor(Version)
	}
	return semver.Major(v) == semver.Major(Version)
}
