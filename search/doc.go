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


// Package search fuses lexical and vector retrieval into one ranking.
//
// The two sub-searches run concurrently. Their rankings are combined with
// reciprocal rank fusion, then blended with the best raw score so that a
// single very strong signal from either side is never diluted by the other
// side's silence. A vector-side failure degrades the engine to lexical-only
// results rather than failing the query.
package search
