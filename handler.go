package loadsync

type Handler[T any] func(notification Notification[T])

type handlerEntry[T any] struct {
	id      uint64
	handler Handler[T]
}

type HandlerChain[T any] []handlerEntry[T]

// Subscription identifies one registered handler.
type Subscription struct {
	name   string
	cancel func()
}

func (this *Subscription) Name() string {
	if this == nil {
		return ""
	}
	return this.name
}

// Cancel removes the handler. It is safe to call more than once.
func (this *Subscription) Cancel() {
	if this == nil || this.cancel == nil {
		return
	}
	this.cancel()
}
