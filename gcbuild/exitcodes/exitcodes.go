// Package exitcodes defines the standard exit codes used by gcbuild.
package exitcodes

// Exit code constants used by gcbuild
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every requested stage ran to completion
// * HarnessFailure (1): Used when a benchmark harness exited nonzero after a
//   successful build
// * RuntimeErr (2): Used for fatal errors such as bad flags, missing
//   directories or failed builds
const (
	Success        = 0 // All stages completed
	HarnessFailure = 1 // A benchmark harness failed
	RuntimeErr     = 2 // Runtime errors
)
