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


// Package ratelimit enforces layered fixed-window request limits backed by
// the coordination store's atomic counters.
//
// Four layers run in order: per-address minute, per-address day, per-client-
// fingerprint minute, and a global minute window. The first layer to deny
// short-circuits the rest. A coordination-store failure denies the request:
// unlike the embedding cache, a degraded store must never admit unbounded
// traffic.
package ratelimit
