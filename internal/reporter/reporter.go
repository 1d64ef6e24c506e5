/*
Package reporter defines a simple interface for structs to produce a printable report about
themselves, which is typically statistically oriented.

The string returned by Report() is one or more lines separated by newlines suitable for printing
to a log file. The caller normally splits multiple lines up and prefixes them with other logging
data such as timestamps and source. Empty lines are ignored and the final trailing newline should
not be present, so most single line reporters need not bother with a newline at all.
*/
package reporter

// Reporter is the sole package interface
type Reporter interface {

	// Name returns the name of the reportable struct. This is normally used
	// as a prefix for reportable output.
	Name() string

	// Report returns one or more printable lines separated by newlines. If
	// 'resetCounters' is true then any internal values used to produce the
	// report are reset to zero *after* the report is produced. Implementations
	// need to manage concurrent access as Report() may be called by multiple
	// go-routines.
	Report(resetCounters bool) string
}
