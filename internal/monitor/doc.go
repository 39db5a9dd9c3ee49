// Package monitor exposes the live acquisition state over HTTP: a JSON
// status endpoint, a Prometheus text exposition, and a WebSocket hub that
// pushes the status to connected clients on a ticker. It only ever reads
// store snapshots and link counters; it never touches the serial port.
package monitor
