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


// Package embedding provides the fail-closed embedding cache.
//
// The cache maps normalized text to a dense vector via the coordination
// store, calling the external embedding provider only on a confirmed cache
// miss. When the store is unreachable the cache reports the embedding as
// absent WITHOUT calling the provider: this trades recall for cost control,
// so a degraded coordination layer can never cause unbounded provider
// spend. Callers degrade to lexical-only search.
//
// Batch embedding for index construction bypasses the cache entirely; a
// build's cost is one-shot and amortized, and its vectors land in the
// persisted index rather than the cache.
package embedding
