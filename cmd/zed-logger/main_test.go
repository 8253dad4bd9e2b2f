package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/zedalytics/internal/feed"
)

// Exercises the reconnect loop's client swaps against concurrent health
// checks; run with -race to verify the accesses are synchronized.
func TestFeedStatusConcurrentSwapAndCheck(t *testing.T) {
	status := &feedStatus{}
	client := feed.NewClient(feed.DefaultConfig("ws://127.0.0.1:1", "token"), nil)

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				status.set(client)
				status.set(nil)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				status.IsConnected()
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()

	// Never-connected client reports disconnected regardless of the slot
	// being set.
	status.set(client)
	assert.False(t, status.IsConnected())
	status.set(nil)
	assert.False(t, status.IsConnected())
}
