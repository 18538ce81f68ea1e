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


// Package service orchestrates one question end-to-end: validation, rate
// limiting, small talk, direct knowledge base answers, and the two
// generation paths (grounded summarization and free chat) with their caches
// and budget checks.
//
// Answer routing follows a strict ladder. A high-confidence knowledge base
// hit short-circuits generation entirely; grounded generation is tried only
// when context exists; free chat is the last resort and carries the
// shortest cache lifetime. Every generation call is metered against the
// daily budget.
package service
