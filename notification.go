package loadsync

// Notification is one event fired by an object of the observed application.
// Name is the event (loadFinished), Source the descriptor of the object that
// fired it and Kind its runtime type name.
type Notification[T any] struct {
	Name   string
	Source string
	Kind   string
	Value  T
}

func NewNotification[T any](name, source, kind string, value T) Notification[T] {
	var notification = Notification[T]{}
	notification.Name = name
	notification.Source = source
	notification.Kind = kind
	notification.Value = value
	return notification
}
