package sheetsync

import (
	"sync"

	"github.com/agentstation/sheetsync/pkg/changes"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// Hook function types for pipeline events
type (
	// SectionMergedHook is called after a merged section is written, or
	// computed in a dry run.
	SectionMergedHook func(section *reconciler.SectionResult)

	// ChangesDetectedHook is called when a diff yields changed identifiers.
	ChangesDetectedHook func(manifest *changes.Manifest)

	// PublishedHook is called after files are published.
	PublishedHook func(result *PublishResult)
)

// hooks manages event callbacks
type hooks struct {
	mu                sync.RWMutex
	onSectionMerged   []SectionMergedHook
	onChangesDetected []ChangesDetectedHook
	onPublished       []PublishedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnSectionMerged registers a callback for merged sections
func (h *hooks) OnSectionMerged(fn SectionMergedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSectionMerged = append(h.onSectionMerged, fn)
}

// OnChangesDetected registers a callback for non-empty manifests
func (h *hooks) OnChangesDetected(fn ChangesDetectedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChangesDetected = append(h.onChangesDetected, fn)
}

// OnPublished registers a callback for publishes
func (h *hooks) OnPublished(fn PublishedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPublished = append(h.onPublished, fn)
}

func (h *hooks) triggerSectionMerged(s *reconciler.SectionResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSectionMerged {
		fn(s)
	}
}

func (h *hooks) triggerChangesDetected(m *changes.Manifest) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onChangesDetected {
		fn(m)
	}
}

func (h *hooks) triggerPublished(res *PublishResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onPublished {
		fn(res)
	}
}
