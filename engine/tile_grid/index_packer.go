package tile_grid

import "sync"

// IndexPacker encodes grid snapshots into index packs, re-encoding only when the snapshot version changes.
type IndexPacker struct {
	mu *sync.Mutex

	valid   bool
	version uint64
	width   int
	height  int
	pack    []byte
}

// NewIndexPacker creates an empty IndexPacker. The first Pack call always encodes.
func NewIndexPacker() *IndexPacker {
	return &IndexPacker{mu: &sync.Mutex{}}
}

// Pack returns the index pack for a snapshot.
//
// Parameters:
//   - s: the grid snapshot to encode
//
// Returns:
//   - []byte: the packed indices; the slice is owned by the packer and valid until the next Pack call
//   - bool: true if the snapshot was encoded, false if the cached pack was returned
//   - error: any encode error; the cache is left untouched on error
func (p *IndexPacker) Pack(s Snapshot) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.valid && p.version == s.Version && p.width == s.Width && p.height == s.Height {
		return p.pack, false, nil
	}

	size := PackedSize(len(s.Indices))
	buf := p.pack[:cap(p.pack)]
	if len(buf) < size {
		buf = make([]byte, size)
	}
	if _, err := EncodeInto(buf, s.Indices, s.Width, s.Height, s.TextureCount); err != nil {
		return nil, false, err
	}
	p.pack = buf[:size]
	p.valid = true
	p.version = s.Version
	p.width, p.height = s.Width, s.Height
	return p.pack, true, nil
}

// Invalidate drops the cached pack so the next Pack call re-encodes.
func (p *IndexPacker) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = false
}
