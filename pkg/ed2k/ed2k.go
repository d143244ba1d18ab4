// Package ed2k computes ED2K content hashes: a two-level MD4 tree over
// fixed-size blocks, as used by the eDonkey2000 network and, later, by
// AniDB as a file identifier.
package ed2k

import (
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/md4"
)

// BlockSize is the size of each inner MD4 block: 9500 KiB.
const BlockSize = 9500 * 1024

// Digest is an ED2K fingerprint: the 16-byte hash, its lowercase hex
// rendering, and the size of the file it was computed from.
type Digest struct {
	Bytes [16]byte
	Hex   string
	Size  uint64
}

// HashFile computes the ED2K digest of the file at path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Digest{}, err
	}
	return hash(f, uint64(fi.Size()))
}

// hash implements the two-level MD4 tree described in spec.md §4.1: each
// BlockSize-byte chunk is hashed independently, and the per-block digests
// are fed into an outer MD4 accumulator — except when the file produced
// exactly one block, in which case the result is that block's digest
// directly, not the MD4 of it.
func hash(r io.Reader, size uint64) (Digest, error) {
	outer := md4.New()
	buf := make([]byte, BlockSize)

	var blocks int
	var lastBlockDigest [16]byte

	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return Digest{}, err
		}
		if n == 0 {
			break
		}

		blocks++
		inner := md4.New()
		inner.Write(buf[:n])
		copy(lastBlockDigest[:], inner.Sum(nil))
		outer.Write(lastBlockDigest[:])

		if err == io.EOF || err == io.ErrUnexpectedEOF || n < BlockSize {
			break
		}
	}

	// An empty file still produces one (zero-length) block.
	if blocks == 0 {
		inner := md4.New()
		copy(lastBlockDigest[:], inner.Sum(nil))
		blocks = 1
	}

	var result [16]byte
	if blocks == 1 {
		result = lastBlockDigest
	} else {
		copy(result[:], outer.Sum(nil))
	}

	return Digest{
		Bytes: result,
		Hex:   hex.EncodeToString(result[:]),
		Size:  size,
	}, nil
}
