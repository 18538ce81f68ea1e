// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/faqcore/core"
)

// blobVersion is the on-disk vector blob format version.
const blobVersion = 2

// sidecar is the JSON metadata written next to the vector blob. Older
// deployments wrote a bare array of records instead; Load tolerates both.
type sidecar struct {
	Docs           []core.QARecord `json:"docs"`
	EmbeddingDim   int             `json:"embedding_dim"`
	EmbeddingModel string          `json:"embedding_model"`
	Version        int             `json:"version"`
}

func sidecarPath(blobPath string) string {
	return strings.TrimSuffix(blobPath, filepath.Ext(blobPath)) + ".docs.json"
}

// save writes the generation's vector blob and its JSON sidecar.
func (i *Index) save(gen *Generation) error {
	if err := os.MkdirAll(filepath.Dir(i.blobPath), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	blob := marshalVectors(gen.Vectors, gen.Dim)
	if err := os.WriteFile(i.blobPath, blob, 0o644); err != nil {
		return fmt.Errorf("write vector blob: %w", err)
	}

	meta := sidecar{
		Docs:           gen.Docs,
		EmbeddingDim:   gen.Dim,
		EmbeddingModel: gen.ModelID,
		Version:        blobVersion,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(i.metaPath, data, 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

// Load restores a previously persisted generation and publishes it as the
// active one. Returns ErrNotPersisted when no blob or sidecar exists, so the
// caller can decide whether to rebuild from the knowledge base.
func (i *Index) Load() error {
	blob, err := os.ReadFile(i.blobPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotPersisted
		}
		return fmt.Errorf("read vector blob: %w", err)
	}
	metaData, err := os.ReadFile(i.metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotPersisted
		}
		return fmt.Errorf("read sidecar: %w", err)
	}

	meta, err := parseSidecar(metaData)
	if err != nil {
		return err
	}
	if meta.EmbeddingModel != "" && meta.EmbeddingModel != i.modelID {
		i.logger.Warn("persisted index built with different embedding model",
			"persisted", meta.EmbeddingModel, "configured", i.modelID)
	}

	vectors, dim, err := unmarshalVectors(blob)
	if err != nil {
		return err
	}
	if meta.EmbeddingDim != 0 && meta.EmbeddingDim != dim {
		return fmt.Errorf("%w: sidecar dim %d, blob dim %d", ErrCorruptIndex, meta.EmbeddingDim, dim)
	}
	if len(meta.Docs) != len(vectors) {
		return fmt.Errorf("%w: %d docs, %d vectors", ErrCorruptIndex, len(meta.Docs), len(vectors))
	}

	gen := &Generation{
		Vectors: vectors,
		Docs:    meta.Docs,
		Dim:     dim,
		ModelID: i.modelID,
		BuiltAt: time.Now(),
	}
	i.gen.Store(gen)
	i.logger.Info("vector index loaded", "vectors", len(vectors), "dim", dim)
	return nil
}

func parseSidecar(data []byte) (*sidecar, error) {
	var meta sidecar
	if err := json.Unmarshal(data, &meta); err == nil && meta.Version > 0 {
		return &meta, nil
	}
	// Legacy sidecars were a bare array of records with no metadata.
	var docs []core.QARecord
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: unreadable sidecar: %v", ErrCorruptIndex, err)
	}
	return &sidecar{Docs: docs}, nil
}

// marshalVectors encodes the matrix as version, dim, row count, then the
// float32 values in row-major order.
func marshalVectors(vectors [][]float32, dim int) []byte {
	size := varint.Int.Size(blobVersion) + varint.Int.Size(dim) + varint.Int.Size(len(vectors))
	for _, row := range vectors {
		for _, f := range row {
			size += raw.Float32.Size(f)
		}
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(blobVersion, buf)
	n += varint.Int.Marshal(dim, buf[n:])
	n += varint.Int.Marshal(len(vectors), buf[n:])
	for _, row := range vectors {
		for _, f := range row {
			n += raw.Float32.Marshal(f, buf[n:])
		}
	}
	return buf
}

func unmarshalVectors(data []byte) ([][]float32, int, error) {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: version: %v", ErrCorruptIndex, err)
	}
	if version != blobVersion {
		return nil, 0, fmt.Errorf("%w: unsupported blob version %d", ErrCorruptIndex, version)
	}
	dim, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: dim: %v", ErrCorruptIndex, err)
	}
	n += m
	rows, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: row count: %v", ErrCorruptIndex, err)
	}
	n += m
	if dim <= 0 || rows < 0 {
		return nil, 0, fmt.Errorf("%w: dim %d, rows %d", ErrCorruptIndex, dim, rows)
	}

	vectors := make([][]float32, rows)
	for r := range rows {
		row := make([]float32, dim)
		for c := range dim {
			f, m, err := raw.Float32.Unmarshal(data[n:])
			if err != nil {
				return nil, 0, fmt.Errorf("%w: value at row %d col %d: %v", ErrCorruptIndex, r, c, err)
			}
			row[c] = f
			n += m
		}
		vectors[r] = row
	}
	return vectors, dim, nil
}
