package control

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attempt represents one logical creation attempt. Its idempotency key is
// generated exactly once, before the first send, and stays stable across
// network retries of the same attempt so swarmd can deduplicate. A new
// user-initiated attempt, even with an identical payload, must be a new
// Attempt and therefore carries a new key.
type Attempt struct {
	key string
}

// NewAttempt starts a logical attempt in the given namespace. The key has
// the form {namespace}-{unix-millis}-{random-suffix}.
func NewAttempt(namespace string) *Attempt {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		ns = "attempt"
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return &Attempt{
		key: fmt.Sprintf("%s-%d-%s", ns, time.Now().UnixMilli(), suffix),
	}
}

// Key returns the attempt's idempotency key.
func (a *Attempt) Key() string {
	return a.key
}
