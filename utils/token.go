package utils

import (
	"sync"
	"time"
)

var (
	revokedTokens = make(map[string]time.Time)
	revokedMutex  sync.RWMutex
)

// RevokeToken remembers a logged-out token until its own expiry so a copied
// cookie cannot hydrate a new session.
func RevokeToken(token string, until time.Time) {
	revokedMutex.Lock()
	defer revokedMutex.Unlock()
	revokedTokens[token] = until
}

func IsTokenRevoked(token string) bool {
	revokedMutex.RLock()
	expiry, exists := revokedTokens[token]
	revokedMutex.RUnlock()

	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}

	revokedMutex.Lock()
	delete(revokedTokens, token)
	revokedMutex.Unlock()
	return false
}

// SweepRevokedTokens drops expired entries every interval until stop is closed.
func SweepRevokedTokens(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			revokedMutex.Lock()
			now := time.Now()
			for token, expiry := range revokedTokens {
				if now.After(expiry) {
					delete(revokedTokens, token)
				}
			}
			revokedMutex.Unlock()
		case <-stop:
			return
		}
	}
}
