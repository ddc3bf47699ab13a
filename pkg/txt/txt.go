// Package txt encodes and decodes DNS-SD TXT record data.
//
// A TXT record is a sequence of length-prefixed entries, each either a
// bare key ("key") or a key-value pair ("key=value"). Keys are
// case-insensitive on the wire but this package compares them exactly;
// callers wanting case folding should normalize before storing.
package txt

import (
	"errors"
	"fmt"
)

// maxEntryLen is the longest single entry the length prefix can
// express.
const maxEntryLen = 255

var (
	// ErrEntryTooLong reports an entry whose key and value exceed the
	// length prefix.
	ErrEntryTooLong = errors.New("txt: entry exceeds 255 bytes")

	// ErrMalformed reports raw record data whose length prefixes do not
	// add up.
	ErrMalformed = errors.New("txt: malformed record data")
)

// Record is a mutable TXT record. The zero value is an empty record
// ready to use.
type Record struct {
	data []byte
}

// Parse validates raw TXT record data and wraps it in a Record. The
// single-zero-byte encoding of an empty record parses as empty.
func Parse(data []byte) (*Record, error) {
	if len(data) == 1 && data[0] == 0 {
		return &Record{}, nil
	}
	for i := 0; i < len(data); {
		n := int(data[i])
		if i+1+n > len(data) {
			return nil, ErrMalformed
		}
		i += 1 + n
	}
	return &Record{data: append([]byte(nil), data...)}, nil
}

func validKey(key string) error {
	if key == "" {
		return errors.New("txt: key must not be empty")
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < 0x20 || c > 0x7e || c == '=' {
			return fmt.Errorf("txt: invalid byte %#x in key", c)
		}
	}
	return nil
}

// Set stores key with the given value, replacing any existing entry
// for the key. A nil value stores a bare key; an empty non-nil value
// stores "key=".
func (r *Record) Set(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	n := len(key)
	if value != nil {
		n += 1 + len(value)
	}
	if n > maxEntryLen {
		return ErrEntryTooLong
	}
	r.Remove(key)
	r.data = append(r.data, byte(n))
	r.data = append(r.data, key...)
	if value != nil {
		r.data = append(r.data, '=')
		r.data = append(r.data, value...)
	}
	return nil
}

// entryAt splits the entry starting at offset i into key, value and
// the offset of the next entry. value is nil for a bare key.
func (r *Record) entryAt(i int) (key string, value []byte, next int) {
	n := int(r.data[i])
	entry := r.data[i+1 : i+1+n]
	next = i + 1 + n
	for j, c := range entry {
		if c == '=' {
			return string(entry[:j]), entry[j+1:], next
		}
	}
	return string(entry), nil, next
}

// Get returns the value stored for key. A bare key yields (nil, true).
func (r *Record) Get(key string) ([]byte, bool) {
	for i := 0; i < len(r.data); {
		k, v, next := r.entryAt(i)
		if k == key {
			return v, true
		}
		i = next
	}
	return nil, false
}

// Remove deletes the entry for key, reporting whether it existed.
func (r *Record) Remove(key string) bool {
	for i := 0; i < len(r.data); {
		k, _, next := r.entryAt(i)
		if k == key {
			r.data = append(r.data[:i], r.data[next:]...)
			return true
		}
		i = next
	}
	return false
}

// Keys returns the keys in record order.
func (r *Record) Keys() []string {
	var keys []string
	for i := 0; i < len(r.data); {
		k, _, next := r.entryAt(i)
		keys = append(keys, k)
		i = next
	}
	return keys
}

// Len reports the number of entries.
func (r *Record) Len() int {
	n := 0
	for i := 0; i < len(r.data); {
		i += 1 + int(r.data[i])
		n++
	}
	return n
}

// Data returns the raw record bytes; empty for an empty record.
func (r *Record) Data() []byte { return r.data }

// RData returns the bytes to put on the wire. DNS does not allow
// zero-length rdata, so an empty record encodes as a single zero byte.
func (r *Record) RData() []byte {
	if len(r.data) == 0 {
		return []byte{0}
	}
	return r.data
}
