//go:build linux || darwin || freebsd || netbsd || openbsd

package block

import "golang.org/x/sys/unix"

// LockMemory requests the OS pin the block's payload pages so they are
// never swapped to disk, per spec.md §6.5. If mlock fails (a sandboxed or
// unprivileged process commonly lacks CAP_IPC_LOCK or hits
// RLIMIT_MEMLOCK), it returns an ErrResourceFailure error and leaves the
// block unlocked; the block stays usable either way.
func (b *EncryptedBlock) LockMemory() error {
	if len(b.payload) == 0 {
		return nil
	}
	if err := unix.Mlock(b.payload); err != nil {
		return blockerrf(ErrResourceFailure, "mlock: %v", err)
	}
	b.isLocked.Store(true)
	return nil
}

// UnlockMemory releases a prior LockMemory pin.
func (b *EncryptedBlock) UnlockMemory() error {
	if len(b.payload) == 0 {
		return nil
	}
	if err := unix.Munlock(b.payload); err != nil {
		return blockerrf(ErrResourceFailure, "munlock: %v", err)
	}
	b.isLocked.Store(false)
	return nil
}

// IsLocked reports whether the last LockMemory call succeeded and has not
// been undone by UnlockMemory.
func (b *EncryptedBlock) IsLocked() bool {
	return b.isLocked.Load()
}
