package token

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically removes expired tokens from a registry.
type Sweeper struct {
	service  *Service
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(service *Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
	}
}

// Start launches the background sweep loop. Call Stop to terminate it.
func (sw *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	sw.cancel = cancel
	sw.done = make(chan struct{})

	go func() {
		defer close(sw.done)
		ticker := time.NewTicker(sw.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := sw.service.Sweep(ctx)
				if err != nil {
					log.Printf("token sweep failed: %v", err)
					continue
				}
				if removed > 0 {
					log.Printf("token sweep removed %d expired tokens", removed)
				}
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to finish.
func (sw *Sweeper) Stop() {
	if sw.cancel == nil {
		return
	}
	sw.cancel()
	<-sw.done
}
