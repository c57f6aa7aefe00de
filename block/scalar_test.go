package block

import "testing"

func TestEncryptedInt_DecryptRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	v, err := NewInt(ctx, 42, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	got, err := v.Decrypt()
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != 42 {
		t.Fatalf("Decrypt = %d, want 42", got)
	}
}

func TestEncryptedInt_AddSubtract(t *testing.T) {
	ctx := newTestContext(t)
	a, err := NewInt(ctx, 100, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewInt a: %v", err)
	}
	b, err := NewInt(ctx, 37, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewInt b: %v", err)
	}

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	gotSum, err := sum.Decrypt()
	if err != nil {
		t.Fatalf("Decrypt sum: %v", err)
	}
	if gotSum != 137 {
		t.Fatalf("sum = %d, want 137", gotSum)
	}

	diff, err := a.Subtract(b)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	gotDiff, err := diff.Decrypt()
	if err != nil {
		t.Fatalf("Decrypt diff: %v", err)
	}
	if gotDiff != 63 {
		t.Fatalf("diff = %d, want 63", gotDiff)
	}
}

func TestEncryptedInt_IsZero(t *testing.T) {
	ctx := newTestContext(t)
	a, err := NewInt(ctx, 7, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	diff, err := a.Subtract(a)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	zero, err := diff.IsZero()
	if err != nil {
		t.Fatalf("IsZero: %v", err)
	}
	if !zero {
		t.Fatal("expected a - a to decrypt to zero")
	}
}

func TestEncryptedInt_OutOfRangeRejected(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := NewInt(ctx, ceiling(ctx), ceiling(ctx)); err == nil {
		t.Fatal("expected value at ceiling to be rejected")
	}
	if _, err := NewInt(ctx, -1, ceiling(ctx)); err == nil {
		t.Fatal("expected negative value to be rejected")
	}
}

func TestEncryptedInt_DifferentContextsRejectedOnCombine(t *testing.T) {
	ctxA := newTestContext(t)
	ctxB := newTestContext(t)
	a, err := NewInt(ctxA, 10, ceiling(ctxA))
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	b, err := NewInt(ctxB, 10, ceiling(ctxB))
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	if _, err := a.Add(b); err == nil {
		t.Fatal("expected mismatched contexts to be rejected")
	}
}

func TestScalar_BytesRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	a, err := NewSize(ctx, 512, ceiling(ctx))
	if err != nil {
		t.Fatalf("NewSize: %v", err)
	}
	raw, err := a.toBytes()
	if err != nil {
		t.Fatalf("toBytes: %v", err)
	}
	restored, err := scalarFromBytes(ctx, raw)
	if err != nil {
		t.Fatalf("scalarFromBytes: %v", err)
	}
	got, err := restored.decrypt()
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != 512 {
		t.Fatalf("restored value = %d, want 512", got)
	}
}
