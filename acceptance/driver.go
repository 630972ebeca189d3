// Package acceptance drives an application through an automation layer and
// records non-fatal verification results, using a loadsync.Waiter to wait
// for asynchronously loaded content.
package acceptance

import "context"

// Driver is the automation layer. Descriptors are opaque to this package.
type Driver interface {
	// Exists reports whether an object matching descriptor is present.
	Exists(ctx context.Context, descriptor string) bool

	// Click finds the object and simulates a left click on it.
	Click(ctx context.Context, descriptor string) error

	// Property reads a property of the object as text.
	Property(ctx context.Context, descriptor, name string) (string, error)

	// InvokeMenu triggers an application menu command, e.g. "File", "Exit".
	InvokeMenu(ctx context.Context, path ...string) error
}
