// Package runfile reads and writes the flat semicolon-delimited files the
// tester exchanges with the outside world: recorded runs, the machine
// compliance table, analyzed specimen curves and the results summary.
package runfile
