package block

// SplitBlock divides a FREE block into two freshly created FREE blocks of
// splitSize and (original size - splitSize) bytes, per spec.md §4.6. The
// original transitions to SPLITTING for the duration of the operation; on
// success it becomes CORRUPTED (consumed, terminal) and the two new
// blocks are returned, carrying over the original's payload bytes and
// link topology. On any failure the original is rolled back to FREE and
// untouched by the call.
func SplitBlock(original *EncryptedBlock, splitSize EncryptedSize) (*EncryptedBlock, *EncryptedBlock, error) {
	if original == nil {
		return nil, nil, blockerr(ErrNilBlock, "split: original block is nil")
	}
	free, err := original.IsFree()
	if err != nil {
		return nil, nil, err
	}
	if !free {
		return nil, nil, blockerr(ErrNotFree, "split: original block is not FREE")
	}

	total, err := original.GetPlaintextSize()
	if err != nil {
		return nil, nil, err
	}
	firstSize, err := splitSize.Decrypt()
	if err != nil {
		return nil, nil, err
	}
	if firstSize < original.cfg.MinBlockSize || firstSize >= total {
		return nil, nil, blockerrf(ErrSplitTooLarge, "split: first size %d invalid for total %d", firstSize, total)
	}
	secondSize := total - firstSize
	if secondSize < original.cfg.MinBlockSize {
		return nil, nil, blockerrf(ErrRemainderTooSmall, "split: remainder %d below minimum %d", secondSize, original.cfg.MinBlockSize)
	}

	if err := original.SetStatus(StatusSplitting); err != nil {
		return nil, nil, err
	}

	first, err := CreateFromPlaintextSize(original.ctx, firstSize, original.cfg)
	if err != nil {
		_ = original.SetStatus(StatusFree)
		return nil, nil, err
	}
	second, err := CreateFromPlaintextSize(original.ctx, secondSize, original.cfg)
	if err != nil {
		_ = original.SetStatus(StatusFree)
		return nil, nil, err
	}

	copySplitPayload(original, first, second)

	if err := wireSplitLinks(original, first, second); err != nil {
		_ = original.SetStatus(StatusFree)
		return nil, nil, err
	}

	if err := original.SetStatus(StatusCorrupted); err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// copySplitPayload implements §4.6 step 3: the first
// min(first.payload_capacity, original.payload_capacity) bytes of
// original's payload go to first; the following
// min(second.payload_capacity, remaining) bytes go to second.
func copySplitPayload(original, first, second *EncryptedBlock) {
	origPayload := original.PayloadBytes()

	n1 := min(len(first.PayloadBytes()), len(origPayload))
	copy(first.PayloadBytes(), origPayload[:n1])

	remainder := origPayload[n1:]
	n2 := min(len(second.PayloadBytes()), len(remainder))
	copy(second.PayloadBytes(), remainder[:n2])
}

// wireSplitLinks implements §4.6 step 4: first inherits original's prev
// link and points forward to second; second points back to first and
// inherits original's next link.
func wireSplitLinks(original, first, second *EncryptedBlock) error {
	if err := first.SetPrev(original.GetPrev()); err != nil {
		return err
	}
	secondAddr, err := NewAddress(original.ctx, blockAddress(second), ceiling(original.ctx))
	if err != nil {
		return err
	}
	if err := first.SetNext(secondAddr); err != nil {
		return err
	}

	firstAddr, err := NewAddress(original.ctx, blockAddress(first), ceiling(original.ctx))
	if err != nil {
		return err
	}
	if err := second.SetPrev(firstAddr); err != nil {
		return err
	}
	return second.SetNext(original.GetNext())
}

// MergeBlocks combines two FREE blocks into a single freshly created FREE
// block whose size is the sum of the two inputs, per spec.md §4.7. Both
// inputs transition to MERGING for the duration; on success both become
// CORRUPTED (consumed) and the merged block is returned, carrying both
// inputs' payload bytes and the outer link topology. On any failure both
// inputs roll back to FREE.
func MergeBlocks(a, b *EncryptedBlock) (*EncryptedBlock, error) {
	if a == nil || b == nil {
		return nil, blockerr(ErrNilBlock, "merge: input block is nil")
	}
	aFree, err := a.IsFree()
	if err != nil {
		return nil, err
	}
	bFree, err := b.IsFree()
	if err != nil {
		return nil, err
	}
	if !aFree || !bFree {
		return nil, blockerr(ErrNotFree, "merge: both inputs must be FREE")
	}

	aSize, err := a.GetPlaintextSize()
	if err != nil {
		return nil, err
	}
	bSize, err := b.GetPlaintextSize()
	if err != nil {
		return nil, err
	}
	totalSize := aSize + bSize

	if err := a.SetStatus(StatusMerging); err != nil {
		return nil, err
	}
	if err := b.SetStatus(StatusMerging); err != nil {
		_ = a.SetStatus(StatusFree)
		return nil, err
	}

	merged, err := CreateFromPlaintextSize(a.ctx, totalSize, a.cfg)
	if err != nil {
		_ = a.SetStatus(StatusFree)
		_ = b.SetStatus(StatusFree)
		return nil, err
	}

	copyMergePayload(a, b, merged)

	if err := merged.SetPrev(a.GetPrev()); err != nil {
		_ = a.SetStatus(StatusFree)
		_ = b.SetStatus(StatusFree)
		return nil, err
	}
	if err := merged.SetNext(b.GetNext()); err != nil {
		_ = a.SetStatus(StatusFree)
		_ = b.SetStatus(StatusFree)
		return nil, err
	}

	if err := a.SetStatus(StatusCorrupted); err != nil {
		return nil, err
	}
	if err := b.SetStatus(StatusCorrupted); err != nil {
		return nil, err
	}
	return merged, nil
}

// copyMergePayload implements §4.7 step 3: a's payload fills the head of
// merged's payload, b's payload fills the region that follows, both
// bounded by merged's capacity.
func copyMergePayload(a, b, merged *EncryptedBlock) {
	mergedPayload := merged.PayloadBytes()

	n1 := min(len(mergedPayload), len(a.PayloadBytes()))
	copy(mergedPayload, a.PayloadBytes()[:n1])

	remainder := mergedPayload[n1:]
	n2 := min(len(remainder), len(b.PayloadBytes()))
	copy(remainder, b.PayloadBytes()[:n2])
}
