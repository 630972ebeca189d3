package loadsync_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smartwalle/loadsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter_Dispatch(t *testing.T) {
	var center = loadsync.New[string]()
	defer center.Close()

	var received = make(chan loadsync.Notification[string], 1)
	center.Handle("n1", func(notification loadsync.Notification[string]) {
		received <- notification
	})
	require.True(t, center.Post("n1", ":view", "QWebPage", "haha"))

	select {
	case n := <-received:
		assert.Equal(t, "n1", n.Name)
		assert.Equal(t, ":view", n.Source)
		assert.Equal(t, "QWebPage", n.Kind)
		assert.Equal(t, "haha", n.Value)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestCenter_DispatchEmptyName(t *testing.T) {
	var center = loadsync.New[int]()
	defer center.Close()

	assert.False(t, center.Post("", ":view", "QWebPage", 1))
}

func TestCenter_MultipleHandlers(t *testing.T) {
	var center = loadsync.New[int]()

	var mu sync.Mutex
	var calls []string
	center.Handle("load", func(loadsync.Notification[int]) {
		mu.Lock()
		calls = append(calls, "a")
		mu.Unlock()
	})
	center.Handle("load", func(loadsync.Notification[int]) {
		mu.Lock()
		calls = append(calls, "b")
		mu.Unlock()
	})
	center.Post("load", "", "", 1)
	center.Close()
	<-center.Done()

	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestCenter_Cancel(t *testing.T) {
	var center = loadsync.New[int]()

	var mu sync.Mutex
	var count int
	var sub = center.Handle("load", func(loadsync.Notification[int]) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NotNil(t, sub)
	assert.Equal(t, "load", sub.Name())

	sub.Cancel()
	sub.Cancel()
	center.Post("load", "", "", 1)
	center.Close()
	<-center.Done()

	assert.Equal(t, 0, count)
}

func TestCenter_RemoveAll(t *testing.T) {
	var center = loadsync.New[int]()

	var called bool
	center.Handle("a", func(loadsync.Notification[int]) { called = true })
	center.Handle("b", func(loadsync.Notification[int]) { called = true })
	center.RemoveAll()
	center.Post("a", "", "", 1)
	center.Post("b", "", "", 1)
	center.Close()
	<-center.Done()

	assert.False(t, called)
}

func TestCenter_HandlerPanicDoesNotStopDelivery(t *testing.T) {
	var center = loadsync.New[int]()

	var values []int
	center.Handle("load", func(n loadsync.Notification[int]) {
		if n.Value == 1 {
			panic("boom")
		}
		values = append(values, n.Value)
	})
	center.Post("load", "", "", 1)
	center.Post("load", "", "", 2)
	center.Close()
	<-center.Done()

	assert.Equal(t, []int{2}, values)
}

func TestCenter_DispatchAfterClose(t *testing.T) {
	var center = loadsync.New[int]()
	center.Close()
	<-center.Done()

	assert.False(t, center.Post("load", "", "", 1))
}

func TestCenter_Default(t *testing.T) {
	require.Same(t, loadsync.Default(), loadsync.Default())

	var received = make(chan interface{}, 1)
	var sub = loadsync.Default().Handle("default-n1", func(n loadsync.Notification[interface{}]) {
		received <- n.Value
	})
	defer sub.Cancel()

	require.True(t, loadsync.Default().Post("default-n1", ":view", "QWebPage", "haha"))
	select {
	case value := <-received:
		assert.Equal(t, "haha", value)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestCenter_Remove(t *testing.T) {
	var center = loadsync.New[int]()

	var mu sync.Mutex
	var names []string
	var record = func(n loadsync.Notification[int]) {
		mu.Lock()
		names = append(names, n.Name)
		mu.Unlock()
	}
	center.Handle("a", record)
	center.Handle("a", record)
	center.Handle("b", record)
	center.Remove("a")
	center.Remove("")

	center.Post("a", "", "", 1)
	center.Post("b", "", "", 2)
	center.Close()
	<-center.Done()

	assert.Equal(t, []string{"b"}, names)
}

func TestCenter_WithCenterLogger(t *testing.T) {
	var buf bytes.Buffer
	var center = loadsync.New[int](loadsync.WithCenterLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	center.Handle("load", func(loadsync.Notification[int]) {
		panic("boom")
	})
	center.Post("load", ":view", "", 1)
	center.Close()
	<-center.Done()

	assert.Contains(t, buf.String(), "notification handler panicked")
	assert.Contains(t, buf.String(), "source=:view")
}

func BenchmarkCenter_Dispatch(b *testing.B) {
	var nCenter = loadsync.New[int]()
	defer nCenter.Close()

	var w = &sync.WaitGroup{}
	nCenter.Handle("b1", func(loadsync.Notification[int]) {
		w.Done()
	})
	for i := 0; i < b.N; i++ {
		w.Add(1)
		nCenter.Post("b1", "", "", i)
	}
	w.Wait()
}
