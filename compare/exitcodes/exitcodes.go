// Package exitcodes defines the standard exit codes used by compare.
package exitcodes

// Exit code constants used by compare
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the comparison ran to completion
// * RuntimeErr (2): Used for fatal errors such as missing files, malformed
//   reports or bad flags
const (
	Success    = 0 // Comparison completed
	RuntimeErr = 2 // Runtime errors
)
