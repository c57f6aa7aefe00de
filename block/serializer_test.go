package block

import "testing"

func TestSerializeBlock_RoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	cfg := DefaultConfig()
	original := mustCreate(t, ctx, 256)
	copy(original.PayloadBytes(), []byte("hello, encrypted block"))
	if err := original.RecomputeChecksums(); err != nil {
		t.Fatalf("RecomputeChecksums: %v", err)
	}

	raw, err := original.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	restored, err := DeserializeBlock(ctx, raw, cfg)
	if err != nil {
		t.Fatalf("DeserializeBlock: %v", err)
	}

	valid, err := restored.ValidateIntegrity()
	if err != nil {
		t.Fatalf("ValidateIntegrity: %v", err)
	}
	if !valid {
		t.Fatal("expected restored block to be valid")
	}

	origSize, err := original.GetPlaintextSize()
	if err != nil {
		t.Fatalf("GetPlaintextSize: %v", err)
	}
	restoredSize, err := restored.GetPlaintextSize()
	if err != nil {
		t.Fatalf("GetPlaintextSize: %v", err)
	}
	if origSize != restoredSize {
		t.Fatalf("restored size = %d, want %d", restoredSize, origSize)
	}

	if string(restored.PayloadBytes()[:len("hello, encrypted block")]) != "hello, encrypted block" {
		t.Fatalf("restored payload = %q", restored.PayloadBytes())
	}
}

func TestGetSerializedVersion_ReadsLeadingField(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)
	raw, err := b.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	packed, err := GetSerializedVersion(raw)
	if err != nil {
		t.Fatalf("GetSerializedVersion: %v", err)
	}
	if UnpackVersion(packed) != CurrentVersion {
		t.Fatalf("GetSerializedVersion = %+v, want %+v", UnpackVersion(packed), CurrentVersion)
	}
}

func TestCheckFormatVersion_RejectsIncompatibleMajor(t *testing.T) {
	ctx := newTestContext(t)
	b := mustCreate(t, ctx, 256)
	raw, err := b.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	compatible, err := CheckFormatVersion(raw, BlockVersion{Major: 2, Minor: 0})
	if err != nil {
		t.Fatalf("CheckFormatVersion: %v", err)
	}
	if compatible {
		t.Fatal("expected major version mismatch to be reported incompatible")
	}
}

func TestDeserializeBlock_TruncatedDataFails(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := DeserializeBlock(ctx, []byte{1, 2, 3}, DefaultConfig()); err == nil {
		t.Fatal("expected truncated data to fail deserialization")
	}
}

func TestBlockSerializer_ChainRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	cfg := DefaultConfig()
	a := mustCreate(t, ctx, 128)
	b := mustCreate(t, ctx, 256)

	s := NewBlockSerializer(ctx, cfg)
	raw, err := s.SerializeChain([]*EncryptedBlock{a, b})
	if err != nil {
		t.Fatalf("SerializeChain: %v", err)
	}

	restored, err := s.DeserializeChain(raw)
	if err != nil {
		t.Fatalf("DeserializeChain: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("got %d blocks, want 2", len(restored))
	}
	for i, want := range []int64{128, 256} {
		got, err := restored[i].GetPlaintextSize()
		if err != nil {
			t.Fatalf("GetPlaintextSize(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("block %d size = %d, want %d", i, got, want)
		}
	}
}
