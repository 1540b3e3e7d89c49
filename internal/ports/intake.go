// Package ports holds the interfaces of long-running transports the server
// starts and stops.
package ports

// Intake is a listener that feeds messages into the analysis service.
type Intake interface {
	// Start begins accepting input. It returns once the listener is bound.
	Start() error

	// Stop closes the listener.
	Stop() error
}
