// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

type Key interface {
	Bytes() []byte
}

// Seq is a global sequence number. It encodes big-endian so keys sort numerically.
type Seq uint64

func (s Seq) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(s))
}

// SeqFromBytes decodes the last 8 bytes of key.
func SeqFromBytes(key []byte) (Seq, error) {
	if len(key) < 8 {
		return 0, errors.Errorf("record: short seq key %x", key)
	}
	return Seq(binary.BigEndian.Uint64(key[len(key)-8:])), nil
}

// String is a variable length key component. It is length prefixed so that
// keys built from it stay prefix free.
type String string

func (s String) Bytes() []byte {
	out := binary.BigEndian.AppendUint16(nil, uint16(len(s)))
	return append(out, s...)
}

// Bytes is a raw composite key.
type Bytes []byte

func (b Bytes) Bytes() []byte { return b }

// Join concatenates key components.
func Join(parts ...Key) Bytes {
	var out []byte
	for _, p := range parts {
		out = append(out, p.Bytes()...)
	}
	return out
}
