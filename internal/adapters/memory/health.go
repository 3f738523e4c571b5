package memory

import (
	"context"
	"sync"

	"github.com/jsamuelsen/garage-service/internal/domain"
)

// checkLock reports whether a read lock on mu can be taken before ctx is done.
func checkLock(ctx context.Context, mu *sync.RWMutex) error {
	acquired := make(chan struct{})

	go func() {
		mu.RLock()
		mu.RUnlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return nil
	case <-ctx.Done():
		return domain.NewUnavailableError("memory store", "lock not acquired: "+ctx.Err().Error())
	}
}
