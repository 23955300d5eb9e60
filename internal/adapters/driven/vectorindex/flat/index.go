// Package flat provides a per-document flat vector index persisted to disk.
//
// Each document gets one artifact file holding its chunk vectors. Search
// is exhaustive cosine similarity, which is exact and fast enough for the
// chunk counts a single document produces. Artifacts record the embedding
// model that produced their vectors so a model change is detected rather
// than silently returning garbage similarities.
package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
)

const (
	// indexMagic identifies an index artifact file.
	indexMagic = "DQVI"

	// indexVersion is the artifact format version.
	indexVersion uint16 = 1
)

// index is one document's loaded vector index.
// Vectors are stored L2-normalised so cosine similarity is a dot product.
type index struct {
	model string
	dims  int
	seqs  []int
	vecs  [][]float32
}

// hit pairs a chunk with its similarity during search.
type hit struct {
	seq int
	sim float64
}

// search returns up to k chunks with similarity >= minSim, sorted
// descending by similarity with ties broken by ascending sequence id.
func (ix *index) search(query []float32, k int, minSim float64) []hit {
	if len(query) != ix.dims || k <= 0 {
		return nil
	}

	q := normalise(query)

	hits := make([]hit, 0, len(ix.seqs))
	for i, vec := range ix.vecs {
		sim := float64(dot(q, vec))
		if sim < minSim {
			continue
		}
		if sim < 0 {
			sim = 0
		} else if sim > 1 {
			sim = 1
		}
		hits = append(hits, hit{seq: ix.seqs[i], sim: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].seq < hits[j].seq
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// normalise returns the L2-normalised copy of v.
// A zero vector is returned unchanged.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// ==================== Serialisation ====================

// Artifact layout, all little-endian:
//
//	magic [4]byte, version uint16, model (uint16 length + bytes),
//	dims uint32, count uint32,
//	count records of (seq uint32, dims float32s)

// encode serialises the index to its on-disk form.
func (ix *index) encode() []byte {
	size := 4 + 2 + 2 + len(ix.model) + 4 + 4 + len(ix.seqs)*(4+ix.dims*4)
	buf := make([]byte, 0, size)

	buf = append(buf, indexMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, indexVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(ix.model)))
	buf = append(buf, ix.model...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(ix.dims))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.seqs)))

	for i, seq := range ix.seqs {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(seq))
		for _, x := range ix.vecs[i] {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		}
	}

	return buf
}

// decode parses an artifact file's contents.
func decode(data []byte) (*index, error) {
	r := reader{data: data}

	magic, err := r.bytes(4)
	if err != nil || string(magic) != indexMagic {
		return nil, fmt.Errorf("bad magic")
	}
	version, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if version != indexVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}

	modelLen, err := r.uint16()
	if err != nil {
		return nil, err
	}
	model, err := r.bytes(int(modelLen))
	if err != nil {
		return nil, err
	}
	dims, err := r.uint32()
	if err != nil {
		return nil, err
	}
	count, err := r.uint32()
	if err != nil {
		return nil, err
	}

	// The header fields come from disk, so check them against the
	// remaining byte length before sizing any allocation from them.
	// Dividing instead of multiplying keeps huge values from wrapping.
	remaining := uint64(len(r.data) - r.off)
	record := 4 + uint64(dims)*4
	if remaining%record != 0 || remaining/record != uint64(count) {
		return nil, fmt.Errorf("header does not match payload length")
	}

	ix := &index{
		model: string(model),
		dims:  int(dims),
		seqs:  make([]int, 0, count),
		vecs:  make([][]float32, 0, count),
	}

	for i := uint32(0); i < count; i++ {
		seq, err := r.uint32()
		if err != nil {
			return nil, err
		}
		vec := make([]float32, dims)
		for j := range vec {
			bits, err := r.uint32()
			if err != nil {
				return nil, err
			}
			vec[j] = math.Float32frombits(bits)
		}
		ix.seqs = append(ix.seqs, int(seq))
		ix.vecs = append(ix.vecs, vec)
	}

	if len(r.data) != r.off {
		return nil, fmt.Errorf("trailing data")
	}

	return ix, nil
}

// reader is a bounds-checked cursor over an artifact buffer.
type reader struct {
	data []byte
	off  int
}

var errTruncated = fmt.Errorf("truncated artifact")

func (r *reader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, errTruncated
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// loadFile reads and decodes an artifact from disk.
func loadFile(path string) (*index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}
