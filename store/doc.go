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


// Package store defines the coordination store abstraction.
//
// The coordination store is an external TTL-bearing key/value service with
// atomic counters. Rate limiting, budget accounting, and all response and
// embedding caches are built on it; its atomic increment primitive is what
// keeps counters correct under concurrent callers across any number of
// processes, with no application-level locking.
//
// Implementations must bound every operation with a short timeout so a
// degraded store cannot stall a request handler. Callers decide what a
// store failure means: the components built on this package deliberately
// differ between fail-open (skip the optional step) and fail-closed (deny
// the operation).
package store
