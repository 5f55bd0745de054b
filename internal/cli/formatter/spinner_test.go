package formatter

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var buf syncBuffer
	stop := StartSpinner(&buf, "Loading children")

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(stripANSI(buf.String())), []byte("Loading children"))
	}, time.Second, 10*time.Millisecond)

	stop()
	stop()
	assert.Contains(t, buf.String(), "\r\033[K")
}

func TestSpinnerFrame_Wraps(t *testing.T) {
	assert.Equal(t, SpinnerFrame(0), SpinnerFrame(len(spinnerFrames)))
}
