package reader

// gtCodeTable maps the combined 2-bit genotype code (a[1]<<1)|a[0] to
// the FORMAT block's typed-byte encoding: REF, first-ALT, missing,
// second-ALT, shifted left one bit to leave the phasing bit clear.
//   00 (REF)      -> (0+1)<<1 = 2
//   01 (first ALT)-> (1+1)<<1 = 4
//   10 (missing)  -> (0)<<1   = 0
//   11 (2nd+ ALT) -> (2+1)<<1 = 6
var gtCodeTable = [4]byte{2, 4, 0, 6}

// FormatGenotypes maps each of the 2*|samples| haplotype codes in a0/a1
// through the fixed table, synthesizing the per-sample typed-byte
// FORMAT block. Output has one byte per haplotype column.
func FormatGenotypes(a0, a1 []byte) []byte {
	out := make([]byte, len(a0))
	for i := range a0 {
		code := (a1[i] << 1) | a0[i]
		out[i] = gtCodeTable[code&3]
	}
	return out
}
