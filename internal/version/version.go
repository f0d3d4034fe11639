// Package version contains information on the current version of the
// compiler. It is split from the main program for easy use.
package version

// Current is the string embedded in synthesized headers as "Compiled with
// ... version X" and folded into the header content hash.
const Current = "0.1.0"
