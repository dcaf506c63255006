package api

import "sync"

// handlerSlot is the single mutable registration for the auth-error
// handler. It is a field on the client rather than package state, so two
// clients never share a handler.
type handlerSlot struct {
	mu sync.Mutex
	h  AuthErrorHandler
}

func (s *handlerSlot) set(h AuthErrorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = h
}

func (s *handlerSlot) get() AuthErrorHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}
