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


// Package knowledge provides the file-backed question/answer store with
// lexical search.
//
// The store holds one immutable KnowledgeSnapshot at a time and replaces it
// atomically on reload, so readers always see a complete, consistent record
// list. Lexical search matches only exact question text and explicit
// keywords tagged on a record; substring and fuzzy similarity are
// intentionally absent because they produce false positives on short common
// substrings in some languages. Semantic similarity is the vector index's
// job.
package knowledge
