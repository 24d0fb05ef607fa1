package ipz

import (
	"bytes"
	"errors"
	"math/bits"
)

// IntegrityChecker validates an ECC-protected byte region. Implementations
// must be pure: no mutation of either slice, pass/fail only. The same
// checker serves the header, the table of contents and individual data
// records; only the covered ranges differ.
type IntegrityChecker interface {
	Check(data, ecc []byte) error
}

var (
	errECCEmpty    = errors.New("ecc region is empty")
	errECCMismatch = errors.New("computed ecc differs from stored ecc")
)

// ComputeECC derives the error-detecting code for data. Byte i of the data
// folds into code byte i%size, rotated by the fold round so that shuffled
// chunks do not cancel out. Any single-byte corruption of the covered
// region changes exactly one code byte.
func ComputeECC(data []byte, size int) []byte {
	if size <= 0 {
		return nil
	}
	code := make([]byte, size)
	for i, b := range data {
		code[i%size] ^= bits.RotateLeft8(b, (i/size)%8)
	}
	return code
}

// DefaultChecker verifies regions against ComputeECC. The production ECC
// scheme differs per platform; swap in another IntegrityChecker to match.
type DefaultChecker struct{}

func (DefaultChecker) Check(data, ecc []byte) error {
	if len(ecc) == 0 {
		return errECCEmpty
	}
	if !bytes.Equal(ComputeECC(data, len(ecc)), ecc) {
		return errECCMismatch
	}
	return nil
}
