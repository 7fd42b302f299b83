// Package galois implements arithmetic over GF(2^8), the finite field
// used by the Reed-Solomon coding engine.
//
// The field is built on the primitive polynomial 0x11D (x^8+x^4+x^3+x^2+1)
// with generator 2, matching the convention used by every Reed-Solomon
// implementation in this tradition (PAR2, klauspost/reedsolomon, and the
// original reed-solomon-erasure crate this module descends from).
package galois

// genPoly is the primitive polynomial defining GF(2^8): x^8+x^4+x^3+x^2+1.
const genPoly = 0x11D

var (
	expTable [512]byte
	logTable [256]byte
	mulTable [256][256]byte
	invTable [256]byte
)

func init() {
	buildExpLogTables()
	buildMulTable()
	buildInvTable()
}

// buildExpLogTables fills expTable/logTable using generator 2 over the
// field defined by genPoly. expTable is doubled in length so that
// Mul/Div never need a modulo on the index.
func buildExpLogTables() {
	x := 1
	for i := 0; i < 255; i++ {
		expTable[i] = byte(x)
		logTable[byte(x)] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= genPoly
		}
	}
	// logTable[0] is left at zero; it is never a valid input to Mul/Div.
	for i := 255; i < 512; i++ {
		expTable[i] = expTable[i-255]
	}
}

// buildMulTable precomputes a full 256x256 byte multiplication table so
// that the vector primitives (MulSlice/MulSliceXor) are pure lookups.
func buildMulTable() {
	for a := 0; a < 256; a++ {
		if a == 0 {
			continue
		}
		loga := int(logTable[a])
		for b := 0; b < 256; b++ {
			if b == 0 {
				continue
			}
			mulTable[a][b] = expTable[loga+int(logTable[b])]
		}
	}
}

func buildInvTable() {
	for a := 1; a < 256; a++ {
		invTable[a] = expTable[255-int(logTable[a])]
	}
}
