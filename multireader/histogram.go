package multireader

// denseThreshold is the sample count at or above which Tally switches from
// the direct per-sample, per-group loop to the 256-entry mask table.
const denseThreshold = 512

// Tally computes the global and per-group 4-bucket genotype-code
// histograms used for AN/AC annotation. Bucket index is the combined
// 2-bit code (a1<<1)|a0: 0=REF, 1=first-ALT, 2=missing,
// 3=second-or-higher-ALT. a0/a1 hold 2*n haplotype codes
// (n = len(groupOf)); both haplotypes of a pair share groupOf[s].
// The two strategies must produce identical results.
func Tally(a0, a1 []byte, groupOf []byte, numGroups int) (global [4]int, perGroup [][4]int) {
	if len(groupOf) >= denseThreshold {
		return tallyTable(a0, a1, groupOf, numGroups)
	}
	return tallyDense(a0, a1, groupOf, numGroups)
}

func tallyDense(a0, a1 []byte, groupOf []byte, numGroups int) (global [4]int, perGroup [][4]int) {
	perGroup = make([][4]int, numGroups)
	for s := 0; s < len(groupOf); s++ {
		mask := groupOf[s]
		for p := 0; p < 2; p++ {
			h := 2*s + p
			code := (a1[h] << 1) | a0[h]
			global[code]++
			for g := 0; g < numGroups; g++ {
				if mask&(1<<uint(g)) != 0 {
					perGroup[g][code]++
				}
			}
		}
	}
	return global, perGroup
}

// tallyTable performs a single O(n) pass counting occurrences of each
// (code, mask-byte) pair, then reduces the 256-entry-per-code table
// into per-group totals in O(256*numGroups), avoiding the O(n*G) inner
// loop of tallyDense when both n and G are large.
func tallyTable(a0, a1 []byte, groupOf []byte, numGroups int) (global [4]int, perGroup [][4]int) {
	var byMask [4][256]int
	for s := 0; s < len(groupOf); s++ {
		mask := groupOf[s]
		for p := 0; p < 2; p++ {
			h := 2*s + p
			code := (a1[h] << 1) | a0[h]
			global[code]++
			byMask[code][mask]++
		}
	}
	perGroup = make([][4]int, numGroups)
	for code := 0; code < 4; code++ {
		for maskByte := 1; maskByte < 256; maskByte++ {
			n := byMask[code][maskByte]
			if n == 0 {
				continue
			}
			for g := 0; g < numGroups; g++ {
				if maskByte&(1<<uint(g)) != 0 {
					perGroup[g][code] += n
				}
			}
		}
	}
	return global, perGroup
}
