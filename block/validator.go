package block

import (
	"strconv"
	"sync/atomic"
)

// ValidationReport is the result of validating one block or one chain,
// per spec.md §4.9. It is always produced, even when the subject is
// invalid — errors make IsValid false, warnings do not.
type ValidationReport struct {
	IsValid             bool
	Errors              []string
	Warnings            []string
	BlocksChecked       int
	ElapsedMicroseconds int64
}

func (r *ValidationReport) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

func (r *ValidationReport) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// elapsedTicks is a monotonic stand-in for wall-clock microsecond timing:
// the subsystem has no wall clock anywhere else (see the shared
// timestamp counter in block.go), so ValidationReport.ElapsedMicroseconds
// is reported in the same counter-tick unit rather than invented from
// time.Now, which would be the only wall-clock touchpoint in the module.
var elapsedTicks atomic.Int64

func measureElapsed(f func()) int64 {
	start := elapsedTicks.Add(1)
	f()
	end := elapsedTicks.Add(1)
	return end - start
}

// BlockValidator performs single-block and chain-level validation. It
// borrows blocks; it never takes ownership, mirroring the original
// const-reference contract.
type BlockValidator struct {
	installedVersion BlockVersion
}

// NewBlockValidator constructs a validator that checks blocks against
// installedVersion for compatibility.
func NewBlockValidator(installedVersion BlockVersion) *BlockValidator {
	return &BlockValidator{installedVersion: installedVersion}
}

// ValidateBlock runs every single-block check from spec.md §4.9: tag
// integrity, magic, size consistency, version compatibility, and
// timestamp monotonicity/future-check against the shared counter.
func (v *BlockValidator) ValidateBlock(b *EncryptedBlock) *ValidationReport {
	report := &ValidationReport{IsValid: true, BlocksChecked: 1}
	report.ElapsedMicroseconds = measureElapsed(func() {
		v.comprehensiveCheck(b, report)
	})
	return report
}

func (v *BlockValidator) comprehensiveCheck(b *EncryptedBlock, report *ValidationReport) {
	if b == nil {
		report.addError("block is nil")
		return
	}

	ok, err := b.VerifyMagicNumber()
	if err != nil {
		report.addError("magic check failed: " + err.Error())
	} else if !ok {
		report.addError("magic number mismatch")
	}

	ok, err = b.VerifySizeConsistency()
	if err != nil {
		report.addError("size consistency check failed: " + err.Error())
	} else if !ok {
		report.addError("size_verify does not match size")
	}

	ok, err = b.verifyHeaderChecksum()
	if err != nil {
		report.addError("header checksum check failed: " + err.Error())
	} else if !ok {
		report.addError("header checksum mismatch")
	}

	ok, err = b.verifyPayloadChecksum()
	if err != nil {
		report.addError("payload checksum check failed: " + err.Error())
	} else if !ok {
		report.addError("payload checksum mismatch")
	}

	ok, err = b.verifyMAC()
	if err != nil {
		report.addError("MAC check failed: " + err.Error())
	} else if !ok {
		report.addError("MAC mismatch")
	}

	version, err := b.GetVersion()
	if err != nil {
		report.addError("version decode failed: " + err.Error())
	} else if !version.IsCompatibleWith(v.installedVersion) {
		report.addError("block version incompatible with installed version")
	}

	created, errC := b.GetCreationTime()
	modified, errM := b.GetModificationTime()
	if errC != nil {
		report.addError("creation timestamp decode failed: " + errC.Error())
	} else if errM != nil {
		report.addError("modification timestamp decode failed: " + errM.Error())
	} else {
		if modified < created {
			report.addError("modification timestamp precedes creation timestamp")
		}
		if modified > globalTimestampCounter.Load() {
			report.addWarning("modification timestamp ahead of current counter snapshot")
		}
	}
}

// ComprehensiveValidation is an alias for ValidateBlock, named to mirror
// the original comprehensive_validation entry point.
func (v *BlockValidator) ComprehensiveValidation(b *EncryptedBlock) *ValidationReport {
	return v.ValidateBlock(b)
}

// ChainMember pairs a block with the address it currently occupies, since
// this subsystem tracks block metadata rather than real memory addresses
// — address assignment is the caller's responsibility.
type ChainMember struct {
	Block   *EncryptedBlock
	Address int64
}

// ValidateChain runs every chain-level check from spec.md §4.9 across an
// ordered sequence of chain members: individual validity, next/prev
// linkage between adjacent members, address-range non-overlap, and the
// corrupted-fraction anomaly heuristic.
func (v *BlockValidator) ValidateChain(chain []ChainMember) *ValidationReport {
	report := &ValidationReport{IsValid: true, BlocksChecked: len(chain)}
	report.ElapsedMicroseconds = measureElapsed(func() {
		v.validateChainMembers(chain, report)
	})
	return report
}

func (v *BlockValidator) validateChainMembers(chain []ChainMember, report *ValidationReport) {
	corrupted := 0
	for i, member := range chain {
		v.comprehensiveCheck(member.Block, report)
		status, err := member.Block.GetStatus()
		if err == nil && status == StatusCorrupted {
			corrupted++
		}

		if i+1 < len(chain) {
			next := chain[i+1]
			nextAddr, err := member.Block.GetNext().Decrypt()
			if err != nil {
				report.addError("failed to decrypt next link at index " + strconv.Itoa(i))
			} else if nextAddr != next.Address {
				report.addError("broken next link between index " + strconv.Itoa(i) + " and " + strconv.Itoa(i+1))
			}
			prevAddr, err := next.Block.GetPrev().Decrypt()
			if err != nil {
				report.addError("failed to decrypt prev link at index " + strconv.Itoa(i+1))
			} else if prevAddr != member.Address {
				report.addError("broken prev link between index " + strconv.Itoa(i+1) + " and " + strconv.Itoa(i))
			}
		}

		for j := i + 1; j < len(chain); j++ {
			other := chain[j]
			iSize, errI := member.Block.GetPlaintextSize()
			jSize, errJ := other.Block.GetPlaintextSize()
			if errI != nil || errJ != nil {
				continue
			}
			if rangesOverlap(member.Address, iSize, other.Address, jSize) {
				report.addError("overlapping address ranges at indices " + strconv.Itoa(i) + " and " + strconv.Itoa(j))
			}
		}
	}

	if len(chain) > 0 {
		fraction := float64(corrupted) / float64(len(chain))
		if fraction > 0.5 {
			report.addWarning("corrupted block fraction exceeds one half")
		}
	}
}

// BatchValidation validates each block independently and returns one
// report per block, mirroring the original batch_validation entry point.
func (v *BlockValidator) BatchValidation(blocks []*EncryptedBlock) []*ValidationReport {
	reports := make([]*ValidationReport, len(blocks))
	for i, b := range blocks {
		reports[i] = v.ValidateBlock(b)
	}
	return reports
}

func rangesOverlap(addrA, sizeA, addrB, sizeB int64) bool {
	return addrA < addrB+sizeB && addrB < addrA+sizeA
}
