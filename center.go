package loadsync

import (
	"log/slog"
	"sync"

	"github.com/smartwalle/queue/block"
)

var shared *Center[interface{}]
var once sync.Once

func Default() *Center[interface{}] {
	once.Do(func() {
		shared = New[interface{}]()
	})
	return shared
}

// Center delivers posted notifications to the handlers registered for their
// name. Delivery happens on a dedicated goroutine, never on the poster's.
type Center[T any] struct {
	mu     *sync.Mutex
	queue  block.Queue[Notification[T]]
	chains map[string]HandlerChain[T]
	nextID uint64
	logger *slog.Logger
	done   chan struct{}
}

func New[T any](opts ...CenterOption) *Center[T] {
	var nOpts = newCenterOptions(opts)
	var center = &Center[T]{}
	center.mu = &sync.Mutex{}
	center.queue = block.New[Notification[T]]()
	center.chains = make(map[string]HandlerChain[T])
	center.logger = nOpts.logger
	center.done = make(chan struct{})
	go center.run()
	return center
}

// Handle registers handler for the notifications named name. The same name
// may be handled any number of times.
func (this *Center[T]) Handle(name string, handler Handler[T]) *Subscription {
	if len(name) == 0 || handler == nil {
		return nil
	}

	this.mu.Lock()
	defer this.mu.Unlock()

	this.nextID++
	var id = this.nextID
	this.chains[name] = append(this.chains[name], handlerEntry[T]{id: id, handler: handler})

	var cancelOnce sync.Once
	return &Subscription{
		name: name,
		cancel: func() {
			cancelOnce.Do(func() {
				this.removeHandler(name, id)
			})
		},
	}
}

// Subscribe adapts Handle to the Subscriber interface.
func (this *Center[T]) Subscribe(name string, fn func(source, kind string)) *Subscription {
	if fn == nil {
		return nil
	}
	return this.Handle(name, func(notification Notification[T]) {
		fn(notification.Source, notification.Kind)
	})
}

func (this *Center[T]) Remove(name string) {
	if len(name) == 0 {
		return
	}

	this.mu.Lock()
	defer this.mu.Unlock()

	delete(this.chains, name)
}

func (this *Center[T]) removeHandler(name string, id uint64) {
	this.mu.Lock()
	defer this.mu.Unlock()

	var chain, ok = this.chains[name]
	if ok == false {
		return
	}

	// the delivery goroutine may hold the old slice, so build a new one
	var nChain = make(HandlerChain[T], 0, len(chain))
	for _, current := range chain {
		if current.id != id {
			nChain = append(nChain, current)
		}
	}

	if len(nChain) == 0 {
		delete(this.chains, name)
		return
	}
	this.chains[name] = nChain
}

func (this *Center[T]) RemoveAll() {
	this.mu.Lock()
	defer this.mu.Unlock()

	for name := range this.chains {
		delete(this.chains, name)
	}
}

func (this *Center[T]) Dispatch(notification Notification[T]) bool {
	if len(notification.Name) == 0 {
		return false
	}
	return this.queue.Enqueue(notification)
}

func (this *Center[T]) Post(name, source, kind string, value T) bool {
	return this.Dispatch(NewNotification(name, source, kind, value))
}

// Close stops accepting notifications. Already queued ones are still
// delivered; Done is closed afterwards.
func (this *Center[T]) Close() {
	this.queue.Close()
}

func (this *Center[T]) Done() <-chan struct{} {
	return this.done
}

func (this *Center[T]) run() {
	defer close(this.done)

	var notifications []Notification[T]

	for {
		notifications = notifications[0:0]
		var ok = this.queue.Dequeue(&notifications)

		for _, notification := range notifications {
			this.mu.Lock()
			var chain = this.chains[notification.Name]
			this.mu.Unlock()

			for _, current := range chain {
				this.deliver(current.handler, notification)
			}
		}

		if ok == false {
			return
		}
	}
}

func (this *Center[T]) deliver(handler Handler[T], notification Notification[T]) {
	defer func() {
		if r := recover(); r != nil {
			this.logger.Error("notification handler panicked",
				slog.String("event", notification.Name),
				slog.String("source", notification.Source),
				slog.Any("panic", r),
			)
		}
	}()
	handler(notification)
}
