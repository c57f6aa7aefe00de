// Command cryptmalloc-bench exercises the encrypted block allocator
// end-to-end: it creates a small chain of blocks under a development
// crypto context, links them, splits one, merges two others, validates
// the chain as originally created and linked (the split and merged
// inputs are CORRUPTED by then; the new blocks are not part of it), and
// prints a report to stdout.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cryptmalloc/encblock/block"
	"github.com/cryptmalloc/encblock/crypto"
)

func main() {
	var (
		blockCount = flag.Int("blocks", 4, "number of blocks to create")
		blockSize  = flag.Int64("size", 256, "plaintext size in bytes for each created block")
		modulus    = flag.Int64("modulus", 1<<21, "plaintext modulus for the development crypto context")
	)
	flag.Parse()

	if err := run(*blockCount, *blockSize, *modulus); err != nil {
		fmt.Fprintln(os.Stderr, "cryptmalloc-bench:", err)
		os.Exit(1)
	}
}

func run(blockCount int, blockSize, modulus int64) error {
	ctx := crypto.NewDevContext(modulus)
	cfg := block.DefaultConfig()
	manager := block.NewBlockLifecycleManager()

	chain := make([]block.ChainMember, 0, blockCount)
	addr := int64(0)
	var blocks []*block.EncryptedBlock

	for i := 0; i < blockCount; i++ {
		b, err := block.CreateFromPlaintextSize(ctx, blockSize, cfg)
		if err != nil {
			return fmt.Errorf("create block %d: %w", i, err)
		}
		if err := manager.RegisterBlock(b); err != nil {
			return fmt.Errorf("register block %d: %w", i, err)
		}
		blocks = append(blocks, b)
		chain = append(chain, block.ChainMember{Block: b, Address: addr})
		addr += blockSize
	}

	for i := 0; i < len(blocks)-1; i++ {
		next, err := block.NewAddress(ctx, chain[i+1].Address, modulus)
		if err != nil {
			return fmt.Errorf("encode next address: %w", err)
		}
		if err := blocks[i].SetNext(next); err != nil {
			return fmt.Errorf("link block %d -> %d: %w", i, i+1, err)
		}
		prev, err := block.NewAddress(ctx, chain[i].Address, modulus)
		if err != nil {
			return fmt.Errorf("encode prev address: %w", err)
		}
		if err := blocks[i+1].SetPrev(prev); err != nil {
			return fmt.Errorf("link block %d <- %d: %w", i+1, i, err)
		}
	}

	if len(blocks) >= 2 {
		splitSize, err := block.NewSize(ctx, blockSize/2, modulus)
		if err != nil {
			return fmt.Errorf("encode split size: %w", err)
		}
		first, second, err := block.SplitBlock(blocks[0], splitSize)
		if err != nil {
			fmt.Fprintln(os.Stderr, "split skipped:", err)
		} else {
			fmt.Printf("split block 0 into two blocks of payload size %d and %d\n", first.GetPayloadSize(), second.GetPayloadSize())
		}
	}

	if len(blocks) >= 4 {
		merged, err := block.MergeBlocks(blocks[2], blocks[3])
		if err != nil {
			fmt.Fprintln(os.Stderr, "merge skipped:", err)
		} else {
			fmt.Printf("merged blocks 2 and 3 into a block of payload size %d\n", merged.GetPayloadSize())
		}
	}

	validator := block.NewBlockValidator(block.CurrentVersion)
	report := validator.ValidateChain(chain)

	fmt.Printf("validated %d blocks in %d ticks: valid=%v errors=%d warnings=%d\n",
		report.BlocksChecked, report.ElapsedMicroseconds, report.IsValid, len(report.Errors), len(report.Warnings))
	for _, e := range report.Errors {
		fmt.Println("  error:", e)
	}
	for _, w := range report.Warnings {
		fmt.Println("  warning:", w)
	}

	stats := manager.GetStats()
	fmt.Printf("lifecycle: created=%d destroyed=%d outstanding=%d peak=%d\n",
		stats.TotalCreated, stats.TotalDestroyed, stats.BytesOutstanding, stats.PeakBytes)

	return nil
}
