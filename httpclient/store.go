package httpclient

import (
	"sync"

	"github.com/draftline/httpkit/logger"
)

// MemoryCredentialStore is an in-memory CredentialStore. Hosts that persist
// credentials elsewhere (keychain, browser storage bridge) supply their own
// implementation through the builder.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{values: make(map[string]string)}
}

// Set stores a value under key.
func (s *MemoryCredentialStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value for key, if present.
func (s *MemoryCredentialStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Remove deletes the value for key. Removing an absent key is a no-op.
func (s *MemoryCredentialStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// logNotifier is the default Notifier: user-facing status goes to the
// structured log until a real surface is wired in.
type logNotifier struct {
	log logger.Logger
}

func (n *logNotifier) NotifyError(message string) {
	n.log.Warn().Str("notification", message).Msg("User notification")
}

func (n *logNotifier) NotifyInfo(message string) {
	n.log.Info().Str("notification", message).Msg("User notification")
}

// noopNavigator is the default Navigator for hosts without navigation.
type noopNavigator struct{}

func (noopNavigator) RedirectTo(string) {}

func (noopNavigator) CurrentPath() string { return "" }
