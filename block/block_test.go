package block

import "testing"

func TestCreateFromPlaintextSize_BelowMinimum(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := CreateFromPlaintextSize(ctx, 32, DefaultConfig()); err == nil {
		t.Fatal("expected error for size below minimum")
	}
}

func TestCreateFromPlaintextSize_AbovePlaintextCeiling(t *testing.T) {
	ctx := newTestContext(t)
	cfg := DefaultConfig()
	if _, err := CreateFromPlaintextSize(ctx, cfg.MaxPlaintextCreateSize+1, cfg); err == nil {
		t.Fatal("expected error for size above plaintext ceiling")
	}
}

func TestCreate_NilContext(t *testing.T) {
	if _, err := CreateFromPlaintextSize(nil, 256, DefaultConfig()); err == nil {
		t.Fatal("expected error for nil context")
	}
}

func TestCreate_FreshBlockIsFreeAndValid(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	free, err := b.IsFree()
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if !free {
		t.Fatal("expected freshly created block to be FREE")
	}

	valid, err := b.ValidateIntegrity()
	if err != nil {
		t.Fatalf("ValidateIntegrity: %v", err)
	}
	if !valid {
		t.Fatal("expected freshly created block to pass integrity validation")
	}

	size, err := b.GetPlaintextSize()
	if err != nil {
		t.Fatalf("GetPlaintextSize: %v", err)
	}
	if size != 256 {
		t.Fatalf("GetPlaintextSize = %d, want 256", size)
	}

	wantPayload := 256 - DefaultConfig().HeaderSize - DefaultConfig().FooterSize
	if got := b.GetPayloadSize(); got != wantPayload {
		t.Fatalf("GetPayloadSize = %d, want %d", got, wantPayload)
	}
}

func TestSetStatus_ValidTransition(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	if err := b.SetStatus(StatusAllocated); err != nil {
		t.Fatalf("SetStatus(ALLOCATED): %v", err)
	}
	allocated, err := b.IsAllocated()
	if err != nil {
		t.Fatalf("IsAllocated: %v", err)
	}
	if !allocated {
		t.Fatal("expected block to be ALLOCATED")
	}

	if err := b.SetStatus(StatusFree); err != nil {
		t.Fatalf("SetStatus(FREE): %v", err)
	}
	free, err := b.IsFree()
	if err != nil {
		t.Fatalf("IsFree: %v", err)
	}
	if !free {
		t.Fatal("expected block to be FREE again")
	}
}

func TestSetStatus_InvalidTransitionRejected(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	if err := b.SetStatus(StatusFree); err == nil {
		t.Fatal("expected FREE -> FREE to be rejected")
	}
}

func TestSetStatus_CorruptedIsTerminal(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	if err := b.SetStatus(StatusCorrupted); err != nil {
		t.Fatalf("SetStatus(CORRUPTED): %v", err)
	}
	if err := b.SetStatus(StatusFree); err == nil {
		t.Fatal("expected CORRUPTED -> FREE to be rejected")
	}
	if err := b.SetStatus(StatusCorrupted); err == nil {
		t.Fatal("expected CORRUPTED -> CORRUPTED to be rejected")
	}
}

func TestSetStatus_UpdatesTimestampAndChecksums(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	before, err := b.GetModificationTime()
	if err != nil {
		t.Fatalf("GetModificationTime: %v", err)
	}
	if err := b.SetStatus(StatusAllocated); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	after, err := b.GetModificationTime()
	if err != nil {
		t.Fatalf("GetModificationTime: %v", err)
	}
	if after <= before {
		t.Fatalf("expected modification timestamp to advance: before=%d after=%d", before, after)
	}

	valid, err := b.ValidateIntegrity()
	if err != nil {
		t.Fatalf("ValidateIntegrity: %v", err)
	}
	if !valid {
		t.Fatal("expected block to remain valid after status transition")
	}
}

func TestPayloadWrite_RequiresChecksumRecompute(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	payload := b.PayloadBytes()
	for i := range payload {
		payload[i] = byte(i)
	}

	valid, err := b.ValidateIntegrity()
	if err != nil {
		t.Fatalf("ValidateIntegrity: %v", err)
	}
	if valid {
		t.Fatal("expected stale payload checksum to fail validation before recompute")
	}

	if err := b.RecomputeChecksums(); err != nil {
		t.Fatalf("RecomputeChecksums: %v", err)
	}
	valid, err = b.ValidateIntegrity()
	if err != nil {
		t.Fatalf("ValidateIntegrity: %v", err)
	}
	if !valid {
		t.Fatal("expected block to validate after recomputing checksums")
	}
}

func TestSecureWipe_ZeroesPayload(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	payload := b.PayloadBytes()
	for i := range payload {
		payload[i] = 0xAB
	}
	if err := b.SecureWipe(); err != nil {
		t.Fatalf("SecureWipe: %v", err)
	}
	for i, v := range b.PayloadBytes() {
		if v != 0 {
			t.Fatalf("payload[%d] = %#x, want 0 after wipe", i, v)
		}
	}
}

func TestVerifyMagicNumber_DetectsTampering(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	wrongMagic, err := NewInt(ctx, 0xFF, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	b.footer.Magic = wrongMagic

	ok, err := b.VerifyMagicNumber()
	if err != nil {
		t.Fatalf("VerifyMagicNumber: %v", err)
	}
	if ok {
		t.Fatal("expected tampered magic number to fail verification")
	}
}

func TestSelfTest_FailsOnCorruptState(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	if err := b.SelfTest(); err != nil {
		t.Fatalf("expected fresh block to pass self-test: %v", err)
	}

	tamperedMAC, err := NewInt(ctx, 1234, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	b.footer.MAC = tamperedMAC

	if err := b.SelfTest(); err == nil {
		t.Fatal("expected self-test to fail after tampering with MAC")
	}
}

func TestGetVersion_MatchesCurrentVersion(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	v, err := b.GetVersion()
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if v != CurrentVersion {
		t.Fatalf("GetVersion = %+v, want %+v", v, CurrentVersion)
	}

	compatible, err := b.IsVersionCompatible(CurrentVersion)
	if err != nil {
		t.Fatalf("IsVersionCompatible: %v", err)
	}
	if !compatible {
		t.Fatal("expected block to be compatible with its own version")
	}
}

func TestLockUnlockMemory_Tolerant(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)

	_ = b.LockMemory()
	_ = b.UnlockMemory()
}
