package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewMessageID generates a transcript-unique message id for messages that
// did not arrive with one: millisecond timestamp plus a short random suffix.
func NewMessageID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
