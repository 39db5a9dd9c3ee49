// Package event carries out-of-band notifications from the serial link reader
// to whoever is driving the machine: firmware events, status updates, and
// warnings. The queue is unbounded so the producer never blocks on a slow
// consumer.
package event
