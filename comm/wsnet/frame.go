// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wsnet

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Wire layout of a data frame, all little-endian:
//
//	[0:8)   tag   int64
//	[8:16)  count int64
//	[16:)   count float64 values
const headerSize = 16

// hello is the first (text) message on every connection, sent by the dialer.
type hello struct {
	Rank int `json:"rank"`
	Size int `json:"size"`
}

func encodeFrame(tag int, data []float64) []byte {
	buf := make([]byte, headerSize+8*len(data))
	binary.LittleEndian.PutUint64(buf[0:], uint64(int64(tag)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(data)))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[headerSize+8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeFrame(buf []byte) (tag int, data []float64, err error) {
	if len(buf) < headerSize {
		return 0, nil, errors.Errorf("wsnet: short frame of %d bytes", len(buf))
	}
	tag = int(int64(binary.LittleEndian.Uint64(buf[0:])))
	count := binary.LittleEndian.Uint64(buf[8:])
	if uint64(len(buf)-headerSize) != 8*count {
		return 0, nil, errors.Errorf("wsnet: frame declares %d values but carries %d bytes", count, len(buf)-headerSize)
	}
	data = make([]float64, count)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[headerSize+8*i:]))
	}
	return tag, data, nil
}
