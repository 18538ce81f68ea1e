package embedding

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// EncodeVector serializes a vector as base64 over raw little-endian float32
// bytes. This is the coordination store's wire format for cached
// embeddings; it is both smaller and faster to decode than a JSON array.
func EncodeVector(vec []float32) string {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeVector deserializes a vector produced by EncodeVector.
func DecodeVector(payload string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, ErrMalformedVector
	}

	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
