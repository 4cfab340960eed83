package store

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// localNotifier delivers events to subscribers of this process only.
type localNotifier struct {
	lock *sync.Mutex
	subs map[chan Event]struct{}
}

func newLocalNotifier() *localNotifier {
	return &localNotifier{
		lock: &sync.Mutex{},
		subs: make(map[chan Event]struct{}),
	}
}

func (n *localNotifier) Publish(_ context.Context, event Event) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	for ch := range n.subs {
		// send over channel without blocking in case nobody is reading
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (n *localNotifier) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, subscriberBuffer)

	n.lock.Lock()
	n.subs[ch] = struct{}{}
	n.lock.Unlock()

	go func() {
		<-ctx.Done()
		n.lock.Lock()
		defer n.lock.Unlock()
		// closeAll may have got here first
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
	}()

	return ch, nil
}

func (n *localNotifier) closeAll() {
	n.lock.Lock()
	defer n.lock.Unlock()
	for ch := range n.subs {
		delete(n.subs, ch)
		close(ch)
	}
}
