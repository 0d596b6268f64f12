// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// snapshot.go — binary snapshots of network documents. The structural
// value model rides in MessagePack instead of text, which keeps large
// documents compact and fast to reload; a ".gz" path additionally gzips
// the stream. Snapshots carry the format version and a creation timestamp
// so a loader can migrate and audit them.

// Package snapshot persists any codec-encodable value to a compact binary
// file and restores it with full type fidelity.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/AndrewDonelson/gridio"
	"github.com/AndrewDonelson/gridio/internal/clock"
)

// Envelope field names.
const (
	fieldVersion = "version"
	fieldCreated = "created_at"
	fieldValue   = "value"
)

// Clock stamps new snapshots; tests swap in a mock.
var Clock clock.Clock = clock.Real{}

// Info describes a snapshot without materializing its payload.
type Info struct {
	Version   string
	CreatedAt time.Time
}

// Save encodes v through the codec registry and writes it as a binary
// snapshot at path. The file appears atomically: the data is staged in a
// temp file and renamed into place. A path ending in ".gz" is gzipped.
func Save(path string, v any) error {
	sv, err := gridio.Encode(v)
	if err != nil {
		return gridio.NewAdapterError("snapshot", "save", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return gridio.NewAdapterError("snapshot", "save", err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(tmp)
		w = gz
	}

	enc := msgpack.NewEncoder(w)
	if err := writeEnvelope(enc, sv); err != nil {
		tmp.Close()
		return gridio.NewAdapterError("snapshot", "save", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			tmp.Close()
			return gridio.NewAdapterError("snapshot", "save", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return gridio.NewAdapterError("snapshot", "save", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return gridio.NewAdapterError("snapshot", "save", err)
	}
	return nil
}

// Load reads a snapshot written by Save and decodes it through the codec
// registry.
func Load(path string, opts ...gridio.Option) (any, error) {
	v, _, err := load(path, opts...)
	return v, err
}

// Stat returns a snapshot's envelope metadata along with its payload.
func Stat(path string, opts ...gridio.Option) (any, Info, error) {
	return load(path, opts...)
}

func load(path string, opts ...gridio.Option) (any, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, gridio.NewAdapterError("snapshot", "load", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, Info{}, gridio.NewAdapterError("snapshot", "load", err)
		}
		defer gz.Close()
		r = gz
	}

	dec := msgpack.NewDecoder(r)
	sv, info, err := readEnvelope(dec)
	if err != nil {
		return nil, Info{}, gridio.NewAdapterError("snapshot", "load", err)
	}
	v, err := gridio.Decode(sv, opts...)
	if err != nil {
		return nil, Info{}, err
	}
	return v, info, nil
}

func writeEnvelope(enc *msgpack.Encoder, sv any) error {
	if err := enc.EncodeMapLen(3); err != nil {
		return err
	}
	if err := enc.EncodeString(fieldVersion); err != nil {
		return err
	}
	if err := enc.EncodeString(gridio.FormatVersion); err != nil {
		return err
	}
	if err := enc.EncodeString(fieldCreated); err != nil {
		return err
	}
	if err := enc.EncodeTime(Clock.Now().UTC()); err != nil {
		return err
	}
	if err := enc.EncodeString(fieldValue); err != nil {
		return err
	}
	return writeValue(enc, sv)
}

func readEnvelope(dec *msgpack.Decoder) (any, Info, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, Info{}, err
	}
	var info Info
	var sv any
	seen := false
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, Info{}, err
		}
		switch key {
		case fieldVersion:
			if info.Version, err = dec.DecodeString(); err != nil {
				return nil, Info{}, err
			}
		case fieldCreated:
			if info.CreatedAt, err = dec.DecodeTime(); err != nil {
				return nil, Info{}, err
			}
		case fieldValue:
			if sv, err = readValue(dec); err != nil {
				return nil, Info{}, err
			}
			seen = true
		default:
			if err := dec.Skip(); err != nil {
				return nil, Info{}, err
			}
		}
	}
	if !seen {
		return nil, Info{}, fmt.Errorf("%w: snapshot envelope has no value", gridio.ErrMalformedPayload)
	}
	return sv, info, nil
}

// writeValue serializes a structural value. Dicts become maps in insertion
// order; tagged values become two-entry maps keyed by the reserved envelope
// keys, mirroring the text layout.
func writeValue(enc *msgpack.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(x)
	case int64:
		return enc.EncodeInt(x)
	case float64:
		return enc.EncodeFloat64(x)
	case string:
		return enc.EncodeString(x)
	case []any:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := writeValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	case *gridio.Dict:
		if err := enc.EncodeMapLen(x.Len()); err != nil {
			return err
		}
		var werr error
		x.Range(func(k, val any) bool {
			if werr = writeValue(enc, k); werr != nil {
				return false
			}
			werr = writeValue(enc, val)
			return werr == nil
		})
		return werr
	case *gridio.Tagged:
		if err := enc.EncodeMapLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString(gridio.TypeKey); err != nil {
			return err
		}
		if err := enc.EncodeString(x.Tag); err != nil {
			return err
		}
		if err := enc.EncodeString(gridio.DataKey); err != nil {
			return err
		}
		return writeValue(enc, x.Data)
	default:
		return fmt.Errorf("snapshot: cannot serialize %T", v)
	}
}

func readValue(dec *msgpack.Decoder) (any, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case code == msgpcode.Nil:
		return nil, dec.DecodeNil()
	case code == msgpcode.True || code == msgpcode.False:
		return dec.DecodeBool()
	case msgpcode.IsFixedNum(code) ||
		code == msgpcode.Int8 || code == msgpcode.Int16 ||
		code == msgpcode.Int32 || code == msgpcode.Int64 ||
		code == msgpcode.Uint8 || code == msgpcode.Uint16 ||
		code == msgpcode.Uint32 || code == msgpcode.Uint64:
		return dec.DecodeInt64()
	case code == msgpcode.Float || code == msgpcode.Double:
		return dec.DecodeFloat64()
	case msgpcode.IsString(code):
		return dec.DecodeString()
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			if out[i], err = readValue(dec); err != nil {
				return nil, err
			}
		}
		return out, nil
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		return readMap(dec)
	default:
		return nil, fmt.Errorf("%w: unexpected msgpack code 0x%02x", gridio.ErrMalformedPayload, code)
	}
}

func readMap(dec *msgpack.Decoder) (any, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	d := gridio.NewDict()
	for i := 0; i < n; i++ {
		k, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		d.Set(k, v)
	}
	if d.Len() == 2 {
		tag, okTag := d.Get(gridio.TypeKey)
		data, okData := d.Get(gridio.DataKey)
		if okTag && okData {
			if s, ok := tag.(string); ok {
				return &gridio.Tagged{Tag: s, Data: data}, nil
			}
		}
	}
	return d, nil
}
