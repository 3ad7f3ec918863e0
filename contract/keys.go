package contract

import "ridegov/sdk"

// packU64BEInline writes x big-endian into dst so proposal keys sort by id
// when a store iterates them.
func packU64BEInline(x uint64, dst []byte) {
	dst[0] = byte(x >> 56)
	dst[1] = byte(x >> 48)
	dst[2] = byte(x >> 40)
	dst[3] = byte(x >> 32)
	dst[4] = byte(x >> 24)
	dst[5] = byte(x >> 16)
	dst[6] = byte(x >> 8)
	dst[7] = byte(x)
}

// packU64BE appends the encoded number to dst and returns the new slice.
func packU64BE(x uint64, dst []byte) []byte {
	var tmp [8]byte
	packU64BEInline(x, tmp[:])
	return append(dst, tmp[:]...)
}

func registryKey() string { return string([]byte{kRegistry}) }

func treasuryKey() string { return string([]byte{kTreasury}) }

func paramsKey() string { return string([]byte{kParams}) }

// proposalKey encodes id under the 0x10 prefix keeping proposals contiguous.
func proposalKey(id uint64) string {
	var buf [9]byte
	buf[0] = kProposalMeta
	packU64BEInline(id, buf[1:])
	return string(buf[:])
}

// proposalPrefix is what ListProposals scans.
func proposalPrefix() string { return string([]byte{kProposalMeta}) }

// ballotKey mixes proposal id plus voter bytes so one voter maps to one receipt.
func ballotKey(id uint64, voter sdk.Address) string {
	addr := voter.String()
	buf := make([]byte, 0, 1+8+len(addr))
	buf = append(buf, kBallot)
	buf = packU64BE(id, buf)
	buf = append(buf, addr...)
	return string(buf)
}

// ballotPrefix covers every receipt of one proposal.
func ballotPrefix(id uint64) string {
	buf := make([]byte, 0, 9)
	buf = append(buf, kBallot)
	buf = packU64BE(id, buf)
	return string(buf)
}
