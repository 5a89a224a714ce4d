package auth

import (
	"context"
	"sync"
)

// TokenCache memoizes login tokens per credential. A cached token is
// reused until explicitly invalidated (typically after the upstream
// rejects it), at which point the next Token call logs in again.
type TokenCache struct {
	mu     sync.Mutex
	auth   Authenticator
	tokens map[string]string
}

func NewTokenCache(a Authenticator) *TokenCache {
	return &TokenCache{
		auth:   a,
		tokens: make(map[string]string),
	}
}

// Token returns the cached token for the credential, logging in on a
// cache miss. The lock is held across the login so concurrent callers
// don't race to log in with the same credential.
func (c *TokenCache) Token(ctx context.Context, credential string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token, ok := c.tokens[credential]; ok {
		return token, nil
	}

	token, err := c.auth.Login(ctx, credential)
	if err != nil {
		return "", err
	}
	c.tokens[credential] = token
	return token, nil
}

// Invalidate drops the cached token for the credential.
func (c *TokenCache) Invalidate(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tokens, credential)
}
