// Package model provides shared estimator infrastructure.
//
// Every estimator in biocat (trees, forests, boosters) composes a
// StateManager to track whether it has been fitted, so Predict can fail with
// a typed NotFittedError instead of dereferencing a nil tree.
package model

import "sync"

// StateManager tracks the fitted state and training dimensions of an
// estimator. Safe for concurrent reads; fitting itself is single-writer.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nSamples  int
	nFeatures int
}

// NewStateManager creates a StateManager in the not-fitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether the estimator has been trained.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as trained. Called by estimator Fit
// implementations after successful training.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// SetDimensions records the shape of the training data.
func (s *StateManager) SetDimensions(nSamples, nFeatures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nSamples = nSamples
	s.nFeatures = nFeatures
}

// NSamples returns the number of training samples seen at fit time.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// NFeatures returns the number of features seen at fit time.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures
}

// Reset returns the estimator to the not-fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nSamples = 0
	s.nFeatures = 0
}
