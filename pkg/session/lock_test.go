package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/sentinel/pkg/adapters/memory"
	"github.com/aretw0/sentinel/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	// 1. Create and Delete many sessions
	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewTranscript(domain.ChannelChat))
		_ = mgr.Delete(ctx, sid)
	}

	// 2. Every lock must be released once its session is idle
	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
