package osthread

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLock_stableID(t *testing.T) {
	unlock, tid := Lock()
	defer unlock()
	for i := 0; i < 10; i++ {
		runtime.Gosched()
		assert.Equal(t, tid, ID())
	}
	if runtime.GOOS == `linux` {
		assert.Positive(t, tid)
	} else {
		assert.Equal(t, -1, tid)
	}
}
