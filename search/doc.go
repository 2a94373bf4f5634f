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


// Package search ranks notes by semantic similarity to a query.
//
// The Searcher tokenizes and embeds the query, embeds every note on a worker
// pool (optionally through an embedding cache), and orders the notes by
// descending dot product with the query embedding. Ties keep input order.
//
// Search never fails the caller. An empty query or an unavailable query
// embedding returns the notes in their original order; a note whose
// embedding is unavailable is left out of the result.
package search
