package ws

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
)

func TestHub_DetachAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		h.detach(&Client{hub: h, matchID: 1, send: make(chan service.Update, 1)})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("detach blocked after hub stop")
	}
}

func TestHub_PublishAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		// Fill the queue past its buffer; Publish must drop, never block.
		for i := 0; i < 300; i++ {
			h.Publish(1, service.Update{Type: "clock", MatchID: 1})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after hub stop")
	}
}
