package auth

import (
	"strings"
	"sync"
	"time"
)

// MaxResetAttempts is the number of wrong guesses after which a reset code
// is discarded.
const MaxResetAttempts = 5

type resetCode struct {
	code      string
	expiresAt time.Time
	failures  int
}

// ResetCodes holds the outstanding password-reset code for each email.
// Issuing a new code replaces the previous one.
type ResetCodes struct {
	mu    sync.Mutex
	codes map[string]resetCode
	ttl   time.Duration
	now   func() time.Time
}

func NewResetCodes(ttl time.Duration) *ResetCodes {
	return &ResetCodes{
		codes: make(map[string]resetCode),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *ResetCodes) Put(email, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[normalizeEmail(email)] = resetCode{code: code, expiresAt: r.now().Add(r.ttl)}
}

// Consume reports whether code is the current, unexpired code for email.
// A matching code is removed so it cannot be used twice. After
// MaxResetAttempts wrong guesses the code is removed as well.
func (r *ResetCodes) Consume(email, code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(email)
	entry, ok := r.codes[key]
	if !ok {
		return false
	}
	if r.now().After(entry.expiresAt) {
		delete(r.codes, key)
		return false
	}
	if entry.code != code {
		entry.failures++
		if entry.failures >= MaxResetAttempts {
			delete(r.codes, key)
		} else {
			r.codes[key] = entry
		}
		return false
	}
	delete(r.codes, key)
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
