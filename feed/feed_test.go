package feed

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishCallsSubscribersInOrder(t *testing.T) {
	f := New()
	var calls []string

	f.Subscribe(func() { calls = append(calls, "first") })
	f.Subscribe(func() { calls = append(calls, "second") })

	f.Publish()

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestUnsubscribeBeforePublish(t *testing.T) {
	f := New()
	var calls []string

	unsubscribe := f.Subscribe(func() { calls = append(calls, "first") })
	f.Subscribe(func() { calls = append(calls, "second") })
	unsubscribe()

	f.Publish()

	assert.Equal(t, []string{"second"}, calls)
	assert.Equal(t, 1, f.Len())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	f := New()
	unsubscribe := f.Subscribe(func() {})
	f.Subscribe(func() {})

	unsubscribe()
	unsubscribe()

	assert.Equal(t, 1, f.Len())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	assert.NotPanics(t, func() { New().Publish() })
}

func TestReentrantSubscribeAndUnsubscribe(t *testing.T) {
	f := New()
	var calls []string
	var unsubscribeSelf func()

	unsubscribeSelf = f.Subscribe(func() {
		calls = append(calls, "self-removing")
		unsubscribeSelf()
		f.Subscribe(func() { calls = append(calls, "late") })
	})
	f.Subscribe(func() { calls = append(calls, "steady") })

	f.Publish()
	assert.Equal(t, []string{"self-removing", "steady"}, calls)

	calls = nil
	f.Publish()
	assert.Equal(t, []string{"steady", "late"}, calls)
}

func TestUnsubscribeLaterSubscriberDuringPublish(t *testing.T) {
	f := New()
	var calls []string
	var unsubscribeSecond func()

	f.Subscribe(func() {
		calls = append(calls, "first")
		unsubscribeSecond()
	})
	unsubscribeSecond = f.Subscribe(func() { calls = append(calls, "second") })

	f.Publish()
	assert.Equal(t, []string{"first"}, calls)

	calls = nil
	f.Publish()
	assert.Equal(t, []string{"first"}, calls)
}

func TestUnsubscribeEarlierSubscriberDuringPublish(t *testing.T) {
	f := New()
	var calls []string
	var unsubscribeFirst func()

	unsubscribeFirst = f.Subscribe(func() { calls = append(calls, "first") })
	f.Subscribe(func() {
		calls = append(calls, "second")
		unsubscribeFirst()
	})

	f.Publish()
	assert.Equal(t, []string{"first", "second"}, calls)

	calls = nil
	f.Publish()
	assert.Equal(t, []string{"second"}, calls)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	f := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsubscribe := f.Subscribe(func() {})
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			f.Publish()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, f.Len())
}
