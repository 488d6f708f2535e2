package obsproto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// EncodeObservation packs o as: uvarint(part count), then per part (in
// name-sorted order, for a deterministic encoding) uvarint(len(name)) name
// uint8(variant) uvarint(len(data)) data.
func EncodeObservation(o Observation) []byte {
	var buf bytes.Buffer
	names := make([]string, 0, len(o.Parts))
	for name := range o.Parts {
		names = append(names, name)
	}
	sort.Strings(names)

	writeUvarint(&buf, uint64(len(names)))
	for _, name := range names {
		part := o.Parts[name]
		writeBytes(&buf, []byte(name))
		buf.WriteByte(byte(part.Variant))
		writeBytes(&buf, part.Data)
	}
	return buf.Bytes()
}

// DecodeObservation is the inverse of EncodeObservation. A truncated or
// otherwise malformed buffer is reported as an error so the caller (the
// ObservationStore query path, spec.md §4.F.5) can skip just that row.
func DecodeObservation(data []byte) (Observation, error) {
	r := bytes.NewReader(data)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return Observation{}, fmt.Errorf("obsproto: read part count: %w", err)
	}
	parts := make(map[string]ObservationPart, count)
	for i := uint64(0); i < count; i++ {
		name, err := readBytes(r)
		if err != nil {
			return Observation{}, fmt.Errorf("obsproto: read part name %d: %w", i, err)
		}
		variantByte, err := r.ReadByte()
		if err != nil {
			return Observation{}, fmt.Errorf("obsproto: read part variant %d: %w", i, err)
		}
		value, err := readBytes(r)
		if err != nil {
			return Observation{}, fmt.Errorf("obsproto: read part data %d: %w", i, err)
		}
		parts[string(name)] = ObservationPart{Variant: PartVariant(variantByte), Data: value}
	}
	return Observation{Parts: parts}, nil
}

// EncodeSystemProfile packs p as four length-prefixed strings in fixed
// field order (board_name, product_name, os, arch); an absent field is
// encoded as a zero-length string, which round-trips identically to "never
// set" under this package's presence convention (SystemProfile.field).
func EncodeSystemProfile(p SystemProfile) []byte {
	var buf bytes.Buffer
	writeBytes(&buf, []byte(p.BoardName))
	writeBytes(&buf, []byte(p.ProductName))
	writeBytes(&buf, []byte(p.OS))
	writeBytes(&buf, []byte(p.Arch))
	return buf.Bytes()
}

// DecodeSystemProfile is the inverse of EncodeSystemProfile.
func DecodeSystemProfile(data []byte) (SystemProfile, error) {
	r := bytes.NewReader(data)
	board, err := readBytes(r)
	if err != nil {
		return SystemProfile{}, fmt.Errorf("obsproto: read board_name: %w", err)
	}
	product, err := readBytes(r)
	if err != nil {
		return SystemProfile{}, fmt.Errorf("obsproto: read product_name: %w", err)
	}
	os, err := readBytes(r)
	if err != nil {
		return SystemProfile{}, fmt.Errorf("obsproto: read os: %w", err)
	}
	arch, err := readBytes(r)
	if err != nil {
		return SystemProfile{}, fmt.Errorf("obsproto: read arch: %w", err)
	}
	return SystemProfile{BoardName: string(board), ProductName: string(product), OS: string(os), Arch: string(arch)}, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
