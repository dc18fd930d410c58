package phylodm

import (
	"fmt"
	"math"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// storeFormatVersion tags the on-disk CBOR envelope so future format
// changes can be detected instead of silently misread.
const storeFormatVersion = 1

// onDisk is the CBOR envelope written by Save. Field names are fixed
// forever: renaming any of them breaks every file written by an earlier
// version of this package. Method is omitted by the CBOR encoder when
// empty to match files predating the node-distance addition, and its
// absence on load is treated as "pd" for backward compatibility.
type onDisk struct {
	Version    int      `cbor:"version"`
	Method     string   `cbor:"method,omitempty"`
	Indices    []string `cbor:"indices"`
	Data       []byte   `cbor:"data"`
	ElemKind   string   `cbor:"elem_kind"`
	ArrDefault float64  `cbor:"arr_default"`
	TreeLength float64  `cbor:"tree_length"`
}

// Save writes p to path in the CBOR format described by §4.4. An existing
// file at path is truncated. If encoding or writing fails, any partially
// written file is removed rather than left corrupt on disk.
func Save(p *PDM, path string) (err error) {
	f, ferr := os.Create(path)
	if ferr != nil {
		return wrapErr(IO, "create store file", ferr)
	}
	defer func() {
		cerr := f.Close()
		if err != nil {
			os.Remove(path)
			return
		}
		if cerr != nil {
			os.Remove(path)
			err = wrapErr(IO, "close store file", cerr)
		}
	}()

	rec, err := encodeRecord(p)
	if err != nil {
		return err
	}
	enc := cbor.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		return wrapErr(IO, "encode PDM store", err)
	}
	return nil
}

// Load reads a PDM previously written by Save. It fails with CorruptStore
// if the file is not a valid PDM store, and with IO for any underlying
// filesystem error.
func Load(path string) (*PDM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(IO, "open store file", err)
	}
	defer f.Close()

	var rec onDisk
	dec := cbor.NewDecoder(f)
	if err := dec.Decode(&rec); err != nil {
		return nil, wrapErr(CorruptStore, "decode PDM store", err)
	}
	return decodeRecord(&rec)
}

func encodeRecord(p *PDM) (*onDisk, error) {
	idx := p.activeIndices()
	rec := &onDisk{
		Version:    storeFormatVersion,
		Method:     p.Method().String(),
		Indices:    idx.Keys(),
		ElemKind:   p.ElemKind(),
		TreeLength: p.TreeLength(),
	}
	switch {
	case p.matF != nil:
		rec.ArrDefault = p.matF.Default()
		rec.Data = encodeFloat64s(p.matF.store.data)
	case p.matU8 != nil:
		rec.ArrDefault = float64(p.matU8.Default())
		rec.Data = append([]byte(nil), p.matU8.store.data...)
	case p.matU16 != nil:
		rec.ArrDefault = float64(p.matU16.Default())
		rec.Data = encodeUint16s(p.matU16.store.data)
	case p.matU32 != nil:
		rec.ArrDefault = float64(p.matU32.Default())
		rec.Data = encodeUint32s(p.matU32.store.data)
	default:
		rec.ArrDefault = float64(p.matU64.Default())
		rec.Data = encodeUint64s(p.matU64.store.data)
	}
	return rec, nil
}

func decodeRecord(rec *onDisk) (*PDM, error) {
	methodTag := rec.Method
	if methodTag == "" {
		methodTag = "pd" // §4.4 backward-compatibility rule
	}
	method, err := ParseMethod(methodTag)
	if err != nil {
		return nil, wrapErr(CorruptStore, "store has invalid method tag", err)
	}

	idx := NewIndexTable()
	for _, k := range rec.Indices {
		if _, err := idx.AddKey(k); err != nil {
			return nil, wrapErr(CorruptStore, "store has duplicate taxon", err)
		}
	}
	n := idx.Len()

	pdm := &PDM{method: method}
	switch rec.ElemKind {
	case "f64":
		vals, err := decodeFloat64s(rec.Data)
		if err != nil {
			return nil, wrapErr(CorruptStore, "decode f64 matrix data", err)
		}
		store, err := triangularStoreFromData[float64](n, vals)
		if err != nil {
			return nil, err
		}
		pdm.matF = &SymMat[float64]{idx: idx, store: store, def: rec.ArrDefault}
		pdm.treeLengthF = rec.TreeLength
	case "u8":
		store, err := triangularStoreFromData[uint8](n, rec.Data)
		if err != nil {
			return nil, err
		}
		pdm.matU8 = &SymMat[uint8]{idx: idx, store: store, def: uint8(rec.ArrDefault)}
		pdm.treeLengthU = uint64(rec.TreeLength)
	case "u16":
		vals, err := decodeUint16s(rec.Data)
		if err != nil {
			return nil, wrapErr(CorruptStore, "decode u16 matrix data", err)
		}
		store, err := triangularStoreFromData[uint16](n, vals)
		if err != nil {
			return nil, err
		}
		pdm.matU16 = &SymMat[uint16]{idx: idx, store: store, def: uint16(rec.ArrDefault)}
		pdm.treeLengthU = uint64(rec.TreeLength)
	case "u32":
		vals, err := decodeUint32s(rec.Data)
		if err != nil {
			return nil, wrapErr(CorruptStore, "decode u32 matrix data", err)
		}
		store, err := triangularStoreFromData[uint32](n, vals)
		if err != nil {
			return nil, err
		}
		pdm.matU32 = &SymMat[uint32]{idx: idx, store: store, def: uint32(rec.ArrDefault)}
		pdm.treeLengthU = uint64(rec.TreeLength)
	case "u64":
		vals, err := decodeUint64s(rec.Data)
		if err != nil {
			return nil, wrapErr(CorruptStore, "decode u64 matrix data", err)
		}
		store, err := triangularStoreFromData[uint64](n, vals)
		if err != nil {
			return nil, err
		}
		pdm.matU64 = &SymMat[uint64]{idx: idx, store: store, def: uint64(rec.ArrDefault)}
		pdm.treeLengthU = uint64(rec.TreeLength)
	default:
		return nil, newErrf(CorruptStore, "unknown elem_kind %q", rec.ElemKind)
	}
	return pdm, nil
}

// The packed triangle is stored as raw little-endian bytes rather than a
// CBOR array of numbers: for large matrices this avoids one CBOR type tag
// per element.

func encodeUint16s(v []uint16) []byte {
	b := make([]byte, len(v)*2)
	for i, x := range v {
		b[i*2] = byte(x)
		b[i*2+1] = byte(x >> 8)
	}
	return b
}

func decodeUint16s(b []byte) ([]uint16, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("byte length %d not a multiple of 2", len(b))
	}
	v := make([]uint16, len(b)/2)
	for i := range v {
		v[i] = uint16(b[i*2]) | uint16(b[i*2+1])<<8
	}
	return v, nil
}

func encodeUint32s(v []uint32) []byte {
	b := make([]byte, len(v)*4)
	for i, x := range v {
		for k := 0; k < 4; k++ {
			b[i*4+k] = byte(x >> (8 * k))
		}
	}
	return b
}

func decodeUint32s(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte length %d not a multiple of 4", len(b))
	}
	v := make([]uint32, len(b)/4)
	for i := range v {
		var x uint32
		for k := 0; k < 4; k++ {
			x |= uint32(b[i*4+k]) << (8 * k)
		}
		v[i] = x
	}
	return v, nil
}

func encodeUint64s(v []uint64) []byte {
	b := make([]byte, len(v)*8)
	for i, x := range v {
		for k := 0; k < 8; k++ {
			b[i*8+k] = byte(x >> (8 * k))
		}
	}
	return b
}

func decodeUint64s(b []byte) ([]uint64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("byte length %d not a multiple of 8", len(b))
	}
	v := make([]uint64, len(b)/8)
	for i := range v {
		var x uint64
		for k := 0; k < 8; k++ {
			x |= uint64(b[i*8+k]) << (8 * k)
		}
		v[i] = x
	}
	return v, nil
}

func encodeFloat64s(v []float64) []byte {
	b := make([]byte, len(v)*8)
	for i, x := range v {
		bits := math.Float64bits(x)
		for k := 0; k < 8; k++ {
			b[i*8+k] = byte(bits >> (8 * k))
		}
	}
	return b
}

func decodeFloat64s(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("byte length %d not a multiple of 8", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		var bits uint64
		for k := 0; k < 8; k++ {
			bits |= uint64(b[i*8+k]) << (8 * k)
		}
		v[i] = math.Float64frombits(bits)
	}
	return v, nil
}
