// Package link owns the serial connection to the tensile tester firmware.
// A background Reader decodes the ASCII frame stream into the sample store
// and the event queue; a Dispatcher serializes outbound commands onto the
// same port. The two sides never share mutable state beyond the port itself.
package link
