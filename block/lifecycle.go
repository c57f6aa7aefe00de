package block

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/crypto/sha3"
)

// LifecycleStats mirrors the original LifecycleStats struct: running
// totals maintained under the manager's atomic counters.
type LifecycleStats struct {
	TotalCreated     int64
	TotalDestroyed   int64
	BytesOutstanding int64
	PeakBytes        int64
}

// BlockLifecycleManager is process-wide bookkeeping for live blocks, per
// spec.md §4.11: a mutex-guarded registry of non-owning references, plus
// atomic counters updated on registration and destruction. Grounded on
// the teacher's node/store/db.go bucket-registry pattern, generalized
// from on-disk buckets to an in-memory observer set.
type BlockLifecycleManager struct {
	mu     sync.Mutex
	active map[string]*EncryptedBlock

	totalCreated     atomic.Int64
	totalDestroyed   atomic.Int64
	bytesOutstanding atomic.Int64
	peakBytes        atomic.Int64
}

// NewBlockLifecycleManager constructs an empty manager.
func NewBlockLifecycleManager() *BlockLifecycleManager {
	return &BlockLifecycleManager{active: make(map[string]*EncryptedBlock)}
}

// fingerprint derives a stable identity key for a block from the block's
// own address and its payload capacity, hashed with SHA3-256 so the registry key
// never carries raw pointer bits into a log or report.
func fingerprint(b *EncryptedBlock) string {
	var buf [16]byte
	addr := uint64(uintptr(unsafe.Pointer(b)))
	for i := 0; i < 8; i++ {
		buf[i] = byte(addr >> (8 * i))
	}
	size := uint64(b.payloadCapacity)
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(size >> (8 * i))
	}
	sum := sha3.Sum256(buf[:])
	return string(sum[:])
}

// RegisterBlock adds b to the active registry and updates the creation
// counters. It is independent of Create: a caller decides when a block
// enters lifecycle tracking, which need not be the moment of
// construction (e.g. a block built for a throwaway self-test never needs
// to be registered at all).
func (m *BlockLifecycleManager) RegisterBlock(b *EncryptedBlock) error {
	if b == nil {
		return blockerr(ErrNilBlock, "lifecycle: cannot register nil block")
	}
	key := fingerprint(b)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.active[key]; exists {
		return blockerr(ErrResourceFailure, "lifecycle: block already registered")
	}
	m.active[key] = b

	m.totalCreated.Add(1)
	outstanding := m.bytesOutstanding.Add(b.payloadCapacity)
	for {
		peak := m.peakBytes.Load()
		if outstanding <= peak || m.peakBytes.CompareAndSwap(peak, outstanding) {
			break
		}
	}
	return nil
}

// UnregisterBlock removes b from the active registry and updates the
// destruction counters, without wiping or otherwise touching the block
// itself — that is SecureDestroyBlock's job.
func (m *BlockLifecycleManager) UnregisterBlock(b *EncryptedBlock) error {
	if b == nil {
		return blockerr(ErrNilBlock, "lifecycle: cannot unregister nil block")
	}
	key := fingerprint(b)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.active[key]; !exists {
		return blockerr(ErrResourceFailure, "lifecycle: block not registered")
	}
	delete(m.active, key)

	m.totalDestroyed.Add(1)
	m.bytesOutstanding.Add(-b.payloadCapacity)
	return nil
}

// IsBlockRegistered reports whether b is currently tracked.
func (m *BlockLifecycleManager) IsBlockRegistered(b *EncryptedBlock) bool {
	if b == nil {
		return false
	}
	key := fingerprint(b)
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.active[key]
	return exists
}

// SecureDestroyBlock wipes b's payload and unregisters it in one step.
func (m *BlockLifecycleManager) SecureDestroyBlock(b *EncryptedBlock) error {
	if err := b.SecureWipe(); err != nil {
		return err
	}
	return m.UnregisterBlock(b)
}

// GetActiveBlockCount returns the number of blocks currently tracked.
func (m *BlockLifecycleManager) GetActiveBlockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// GetActiveBlocks returns a snapshot slice of every tracked block.
func (m *BlockLifecycleManager) GetActiveBlocks() []*EncryptedBlock {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*EncryptedBlock, 0, len(m.active))
	for _, b := range m.active {
		out = append(out, b)
	}
	return out
}

// EmergencyCleanup walks the active set and securely destroys every
// tracked block, per spec.md §4.11. It continues past individual
// failures and returns the first error encountered, if any, after
// attempting every block.
func (m *BlockLifecycleManager) EmergencyCleanup() error {
	blocks := m.GetActiveBlocks()
	var firstErr error
	for _, b := range blocks {
		if err := m.SecureDestroyBlock(b); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DetectMemoryLeaks returns the blocks still registered at a point where
// the caller expected the registry to be quiet. A non-empty slice is the
// leak report; an empty slice means no leaks.
func (m *BlockLifecycleManager) DetectMemoryLeaks() []*EncryptedBlock {
	return m.GetActiveBlocks()
}

// GetStats returns a snapshot of the running counters.
func (m *BlockLifecycleManager) GetStats() LifecycleStats {
	return LifecycleStats{
		TotalCreated:     m.totalCreated.Load(),
		TotalDestroyed:   m.totalDestroyed.Load(),
		BytesOutstanding: m.bytesOutstanding.Load(),
		PeakBytes:        m.peakBytes.Load(),
	}
}

// ResetStats zeroes every counter without touching the active registry.
func (m *BlockLifecycleManager) ResetStats() {
	m.totalCreated.Store(0)
	m.totalDestroyed.Store(0)
	m.bytesOutstanding.Store(0)
	m.peakBytes.Store(0)
}
