package sat

import (
	"encoding/binary"
	"io"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/pkg/errors"
)

// Codec serializes SparseSAT summaries for cube images: a length-prefixed
// run of (key, running sum) pairs, elements encoded by Elem.
type Codec[T Value[T]] struct {
	Elem cube.SummaryCodec[T]
}

// Encode writes one table.
func (c Codec[T]) Encode(w io.Writer, s SparseSAT[T]) error {
	le := binary.LittleEndian
	if err := binary.Write(w, le, uint32(len(s.entries))); err != nil {
		return err
	}
	for _, e := range s.entries {
		if err := binary.Write(w, le, e.Key); err != nil {
			return err
		}
		if err := c.Elem.Encode(w, e.Sum); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one table.
func (c Codec[T]) Decode(r io.Reader) (SparseSAT[T], error) {
	le := binary.LittleEndian
	var n uint32
	if err := binary.Read(r, le, &n); err != nil {
		return SparseSAT[T]{}, err
	}
	entries := make([]Entry[T], 0, n)
	var lastKey uint64
	for i := uint32(0); i < n; i++ {
		var key uint64
		if err := binary.Read(r, le, &key); err != nil {
			return SparseSAT[T]{}, err
		}
		if i > 0 && key <= lastKey {
			return SparseSAT[T]{}, errors.Newf(errors.CodeSerializeError,
				"table keys not strictly increasing at entry %d", i)
		}
		lastKey = key
		sum, err := c.Elem.Decode(r)
		if err != nil {
			return SparseSAT[T]{}, err
		}
		entries = append(entries, Entry[T]{Key: key, Sum: sum})
	}
	return SparseSAT[T]{entries: entries}, nil
}

// WriteTo serializes the SAT cube image: the SAT dimension's width followed
// by the base cube image.
func (c *Cube[T]) WriteTo(w io.Writer, elem cube.SummaryCodec[T]) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(c.lastWidth)); err != nil {
		return errors.Wrap(errors.CodeSerializeError, "write SAT width", err)
	}
	return c.base.WriteTo(w, Codec[T]{Elem: elem})
}

// ReadCube deserializes a SAT cube image written by WriteTo.
func ReadCube[T Value[T]](r io.Reader, elem cube.SummaryCodec[T]) (*Cube[T], error) {
	var width uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, errors.Wrap(errors.CodeSerializeError, "read SAT width", err)
	}
	if width < 1 || width > cube.MaxWidth {
		return nil, errors.Newf(errors.CodeSerializeError, "SAT width %d out of range", width)
	}
	base, err := cube.Read[SparseSAT[T]](r, Codec[T]{Elem: elem})
	if err != nil {
		return nil, err
	}
	return &Cube[T]{base: base, lastWidth: int(width)}, nil
}
