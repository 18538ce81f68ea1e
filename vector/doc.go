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


// Package vector provides the in-memory nearest-neighbor index over
// embedded knowledge records.
//
// An Index holds at most one active Generation: the embedded vectors, the
// records they came from, and the embedding model identity, built together
// and immutable afterwards. Rebuilds construct a complete new Generation
// off to the side and publish it with one atomic pointer swap; searches
// dereference the pointer once and therefore always see a fully-formed
// generation, never a mix of vectors and records from different builds.
//
// Vectors are L2-normalized at build time so inner product equals cosine
// similarity. Generations persist to an index blob plus a JSON sidecar with
// the record list and embedding metadata.
package vector
