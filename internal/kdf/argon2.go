package kdf

import (
	"encoding/binary"

	"golang.org/x/crypto/argon2"

	"github.com/vaultkeeper/kdbx4/logging"
)

// Variant selects the Argon2 indexing mode. KDBX4 headers record this as
// part of the KDF UUID (Argon2d vs Argon2id); Argon2i is never used by
// KDBX4 but is implemented here for completeness of the type dispatch.
type Variant uint32

const (
	VariantArgon2d Variant = 0
	VariantArgon2i Variant = 1
	VariantArgon2id Variant = 2
)

// Params bundles the tunable Argon2 cost parameters read from a header's
// KdfParameters variant dictionary.
type Params struct {
	Variant     Variant
	Version     uint32 // 0x10 or 0x13
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint32
	Salt        []byte
	KeyLen      uint32
}

var log = logging.GetRoot()

// Derive runs Argon2 over password, producing Params.KeyLen bytes.
//
// Argon2i and Argon2id delegate to golang.org/x/crypto/argon2, which only
// implements those two variants (version 0x13). Argon2d has no such public
// implementation anywhere in the retrieval pack or its dependency closure,
// so it runs through our own RFC 9106 core below: H0 seeding, per-lane
// initial blocks, t passes of memory fill across 4 slices per pass with
// data-dependent indexing, and a final XOR-then-hash of the last column.
func Derive(password []byte, p Params) ([]byte, error) {
	if p.Parallelism == 0 || p.Memory == 0 || p.Iterations == 0 {
		return nil, ErrInvalidParams
	}
	if p.Parallelism > 255 {
		return nil, ErrInvalidParams
	}

	switch p.Variant {
	case VariantArgon2id:
		log.Debug("argon2id derive (golang.org/x/crypto/argon2) mem=%dKiB iter=%d par=%d", p.Memory, p.Iterations, p.Parallelism)
		return argon2.IDKey(password, p.Salt, p.Iterations, p.Memory, uint8(p.Parallelism), p.KeyLen), nil
	case VariantArgon2i:
		log.Debug("argon2i derive (golang.org/x/crypto/argon2) mem=%dKiB iter=%d par=%d", p.Memory, p.Iterations, p.Parallelism)
		return argon2.Key(password, p.Salt, p.Iterations, p.Memory, uint8(p.Parallelism), p.KeyLen), nil
	}

	memoryBlocks := p.Memory
	if memoryBlocks < 8*p.Parallelism {
		memoryBlocks = 8 * p.Parallelism
	}
	memoryBlocks -= memoryBlocks % (4 * p.Parallelism)

	laneLength := memoryBlocks / p.Parallelism
	segmentLength := laneLength / 4

	h0 := computeH0(password, p)

	lanes := make([]argonBlock, memoryBlocks)

	for lane := uint32(0); lane < p.Parallelism; lane++ {
		lanes[lane*laneLength+0] = firstBlock(h0, 0, lane)
		lanes[lane*laneLength+1] = firstBlock(h0, 1, lane)
	}

	for pass := uint32(0); pass < p.Iterations; pass++ {
		for slice := uint32(0); slice < 4; slice++ {
			for lane := uint32(0); lane < p.Parallelism; lane++ {
				fillSegment(lanes, p, pass, slice, lane, laneLength, segmentLength)
			}
		}
	}

	var final argonBlock
	final = lanes[0*laneLength+laneLength-1]
	for lane := uint32(1); lane < p.Parallelism; lane++ {
		final.xorWith(&final, &lanes[lane*laneLength+laneLength-1])
	}

	out := make([]byte, p.KeyLen)
	blake2bLong(out, final.bytes())

	log.Debug("argon2 derive variant=%d mem=%dKiB iter=%d par=%d", p.Variant, p.Memory, p.Iterations, p.Parallelism)
	return out, nil
}

func computeH0(password []byte, p Params) [64]byte {
	buf := make([]byte, 0, 256)
	putU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	putBytes := func(b []byte) {
		putU32(uint32(len(b)))
		buf = append(buf, b...)
	}

	putU32(p.Parallelism)
	putU32(p.KeyLen)
	putU32(p.Memory)
	putU32(p.Iterations)
	putU32(p.Version)
	putU32(uint32(p.Variant))
	putBytes(password)
	putBytes(p.Salt)
	putBytes(nil) // secret key, unused by KDBX4
	putBytes(nil) // associated data, unused by KDBX4

	var out [64]byte
	blake2bLong(out[:], buf)
	return out
}

func firstBlock(h0 [64]byte, index uint32, lane uint32) argonBlock {
	buf := make([]byte, 0, 72)
	buf = append(buf, h0[:]...)
	var idxB, laneB [4]byte
	binary.LittleEndian.PutUint32(idxB[:], index)
	binary.LittleEndian.PutUint32(laneB[:], lane)
	buf = append(buf, idxB[:]...)
	buf = append(buf, laneB[:]...)

	out := make([]byte, 1024)
	blake2bLong(out, buf)
	return blockFromBytes(out)
}

// fillSegment fills one (pass, slice, lane) segment using Argon2d's
// data-dependent addressing: the reference block indices come from the
// previous block's own content, rather than from a separate
// data-independent address-generation pass (which Argon2i/id use and which
// golang.org/x/crypto/argon2 already implements for us — see Derive).
func fillSegment(lanes []argonBlock, p Params, pass, slice, lane, laneLength, segmentLength uint32) {
	startIndex := uint32(0)
	if pass == 0 && slice == 0 {
		startIndex = 2
	}

	for i := startIndex; i < segmentLength; i++ {
		index := slice*segmentLength + i
		prevIndex := index - 1
		if index == 0 {
			prevIndex = laneLength - 1
		}

		prev := lanes[lane*laneLength+prevIndex]
		j1 := uint32(prev[0])
		j2 := uint32(prev[0] >> 32)

		refLane := j2 % p.Parallelism
		if pass == 0 && slice == 0 {
			refLane = lane
		}

		refIndex := computeRefIndex(p, pass, slice, lane, refLane, index, i, laneLength, segmentLength, j1)

		prevBlock := lanes[lane*laneLength+prevIndex]
		refBlock := lanes[refLane*laneLength+refIndex]

		cur := index
		if pass == 0 {
			compressG(&lanes[lane*laneLength+cur], &prevBlock, &refBlock, false)
		} else {
			compressG(&lanes[lane*laneLength+cur], &prevBlock, &refBlock, true)
		}
	}
}

func computeRefIndex(p Params, pass, slice, lane, refLane, index, i, laneLength, segmentLength uint32, j1 uint32) uint32 {
	var refAreaSize uint32
	switch {
	case pass == 0 && slice == 0:
		refAreaSize = index - 1
	case pass == 0:
		if lane == refLane {
			refAreaSize = slice*segmentLength + i - 1
		} else if i == 0 {
			refAreaSize = slice*segmentLength - 1
		} else {
			refAreaSize = slice * segmentLength
		}
	default:
		if lane == refLane {
			refAreaSize = laneLength - segmentLength + i - 1
		} else if i == 0 {
			refAreaSize = laneLength - segmentLength - 1
		} else {
			refAreaSize = laneLength - segmentLength
		}
	}

	var startPosition uint32
	if pass != 0 {
		if slice != 3 {
			startPosition = (slice + 1) * segmentLength
		}
	}

	if refAreaSize == 0 {
		return startPosition % laneLength
	}

	rel := uint64(j1)
	rel = (rel * rel) >> 32
	rel = (uint64(refAreaSize) * rel) >> 32
	relativePosition := uint32(refAreaSize) - 1 - uint32(rel)

	return (startPosition + relativePosition) % laneLength
}
