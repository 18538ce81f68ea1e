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


// Package ai defines the provider boundary for embeddings and text
// generation.
//
// The rest of the system treats both providers as black boxes: an Embedder
// turns text into dense vectors, a Completer turns prompts into an answer
// plus token usage. Concrete implementations live in subpackages (openai
// for OpenAI-compatible services, mock for tests).
package ai
