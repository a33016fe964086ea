package cube

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/utils"
)

// cubeMagic marks a serialized cube image.
const cubeMagic uint32 = 0x4e435542 // "NCUB"

// cubeVersion is the current image format version.
const cubeVersion uint32 = 1

// SummaryCodec encodes and decodes one summary value of the image.
type SummaryCodec[S any] interface {
	Encode(w io.Writer, s S) error
	Decode(r io.Reader) (S, error)
}

// CountCodec serializes Count summaries as fixed 64-bit integers.
type CountCodec struct{}

// Encode writes one count.
func (CountCodec) Encode(w io.Writer, s Count) error {
	return binary.Write(w, binary.LittleEndian, int64(s))
}

// Decode reads one count.
func (CountCodec) Decode(r io.Reader) (Count, error) {
	var v int64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}
	return Count(v), nil
}

// WriteTo serializes the cube image: widths, root, every slab slot with its
// refcount and free list, and the summary slab through the codec. The image
// reproduces the exact slab layout, free slots included, so handles held
// elsewhere stay meaningful.
func (c *Cube[S]) WriteTo(w io.Writer, codec SummaryCodec[S]) error {
	le := binary.LittleEndian
	hdr := []uint32{cubeMagic, cubeVersion, uint32(len(c.dims))}
	for _, v := range hdr {
		if err := binary.Write(w, le, v); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "write header", err)
		}
	}
	if err := binary.Write(w, le, int32(c.root)); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "write root", err)
	}
	sealed := uint8(0)
	if c.sealed {
		sealed = 1
	}
	if err := binary.Write(w, le, sealed); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "write seal flag", err)
	}

	for _, dm := range c.dims {
		if err := binary.Write(w, le, uint32(dm.Width)); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "write width", err)
		}
		if err := writeSlab(w, &dm.Nodes, func(n Node) error {
			return binary.Write(w, le, []int32{int32(n.Left), int32(n.Right), int32(n.Next)})
		}); err != nil {
			return err
		}
	}
	return writeSlab(w, &c.summaries, func(s S) error {
		return codec.Encode(w, s)
	})
}

func writeSlab[T any](w io.Writer, v *RefVec[T], enc func(T) error) error {
	le := binary.LittleEndian
	if err := binary.Write(w, le, uint32(v.Len())); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "write slab size", err)
	}
	for i := 0; i < v.Len(); i++ {
		if err := binary.Write(w, le, v.Refs(Handle(i))); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "write refcount", err)
		}
		if err := enc(*v.At(Handle(i))); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "write slab entry", err)
		}
	}
	if err := binary.Write(w, le, uint32(len(v.freeList))); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "write free list size", err)
	}
	for _, h := range v.freeList {
		if err := binary.Write(w, le, int32(h)); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "write free list entry", err)
		}
	}
	return nil
}

// Read deserializes a cube image written by WriteTo.
func Read[S Summary[S]](r io.Reader, codec SummaryCodec[S], opts ...Opt[S]) (*Cube[S], error) {
	le := binary.LittleEndian
	var magic, version, nDims uint32
	for _, p := range []*uint32{&magic, &version, &nDims} {
		if err := binary.Read(r, le, p); err != nil {
			return nil, errors.Wrap(errors.CodeSerializeError, "read header", err)
		}
	}
	if magic != cubeMagic {
		return nil, errors.Newf(errors.CodeSerializeError, "bad magic %#x", magic)
	}
	if version != cubeVersion {
		return nil, errors.Newf(errors.CodeSerializeError, "unsupported image version %d", version)
	}
	if nDims == 0 {
		return nil, errors.New(errors.CodeSerializeError, "image has no dimensions")
	}

	var root int32
	if err := binary.Read(r, le, &root); err != nil {
		return nil, errors.Wrap(errors.CodeSerializeError, "read root", err)
	}
	var sealed uint8
	if err := binary.Read(r, le, &sealed); err != nil {
		return nil, errors.Wrap(errors.CodeSerializeError, "read seal flag", err)
	}

	c := &Cube[S]{
		root:       Handle(root),
		sealed:     sealed != 0,
		spineCache: make(map[spineKey]Handle),
		logger:     &utils.NullLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	for d := uint32(0); d < nDims; d++ {
		var width uint32
		if err := binary.Read(r, le, &width); err != nil {
			return nil, errors.Wrap(errors.CodeSerializeError, "read width", err)
		}
		if width < 1 || width > MaxWidth {
			return nil, errors.Newf(errors.CodeSerializeError, "image width %d out of range", width)
		}
		dm := NewDimension(int(width))
		if err := readSlab(r, &dm.Nodes, func() (Node, error) {
			var lrn [3]int32
			if err := binary.Read(r, le, &lrn); err != nil {
				return Node{}, err
			}
			return Node{Left: Handle(lrn[0]), Right: Handle(lrn[1]), Next: Handle(lrn[2])}, nil
		}); err != nil {
			return nil, err
		}
		c.dims = append(c.dims, dm)
	}
	if err := readSlab(r, &c.summaries, func() (S, error) {
		return codec.Decode(r)
	}); err != nil {
		return nil, err
	}

	c.rebuildParents()
	if err := c.CheckInvariants(); err != nil {
		return nil, errors.Wrap(errors.CodeSerializeError, "image fails self-check", err)
	}
	return c, nil
}

func readSlab[T any](r io.Reader, v *RefVec[T], dec func() (T, error)) error {
	le := binary.LittleEndian
	var size uint32
	if err := binary.Read(r, le, &size); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "read slab size", err)
	}
	for i := uint32(0); i < size; i++ {
		var refs int32
		if err := binary.Read(r, le, &refs); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "read refcount", err)
		}
		val, err := dec()
		if err != nil {
			return errors.Wrap(errors.CodeSerializeError, fmt.Sprintf("read slab entry %d", i), err)
		}
		v.values = append(v.values, val)
		v.refs = append(v.refs, refs)
	}
	var freeLen uint32
	if err := binary.Read(r, le, &freeLen); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "read free list size", err)
	}
	for i := uint32(0); i < freeLen; i++ {
		var h int32
		if err := binary.Read(r, le, &h); err != nil {
			return errors.Wrap(errors.CodeSerializeError, "read free list entry", err)
		}
		if h < 0 || int(h) >= len(v.values) || v.refs[h] != 0 {
			return errors.Newf(errors.CodeSerializeError, "free list entry %d invalid", h)
		}
		v.freeList = append(v.freeList, Handle(h))
	}
	return nil
}

// rebuildParents reconstructs the per-dimension parents lists from the
// left/right edges of live nodes.
func (c *Cube[S]) rebuildParents() {
	for _, dm := range c.dims {
		dm.parents = make([][]Handle, dm.Nodes.Len())
		for i := 0; i < dm.Nodes.Len(); i++ {
			if dm.Nodes.Refs(Handle(i)) == 0 {
				continue
			}
			n := dm.Nodes.At(Handle(i))
			dm.addParent(n.Left, Handle(i))
			dm.addParent(n.Right, Handle(i))
		}
	}
}
