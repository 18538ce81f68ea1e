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


// Package budget tracks daily generation spend against a hard cap.
//
// Cost accumulates in a per-calendar-date counter in the coordination store
// via atomic float increments, so any number of handler processes share one
// ledger. Exceeded checks fail closed: a store error reads as over budget,
// because spend protection outranks availability.
package budget
