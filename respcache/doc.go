// Package respcache provides content-addressed answer caches over the
// coordination store.
//
// Two instances are used in practice: a long-TTL cache for knowledge-grounded
// answers, keyed on the question plus a prefix of its grounding context, and
// a short-TTL cache for ungrounded free-form answers, keyed on the question
// alone. Both are best-effort: store failures degrade to a cache miss, never
// to an error.
package respcache
