// Package plan builds TypeMaps: the ordered property mappings between a source and a
// destination type under one configuration snapshot.
//
// Build pipeline:
//  1. Enumerate source property paths (nested members included, cycles cut by the type stack)
//  2. Apply explicit declarations; their destinations are excluded from implicit matching
//  3. Walk destination members depth first; for each, score every source path with the
//     matching strategy and keep the convertible candidates at the top score
//  4. Descend into struct destinations when no candidate converts fully and nested
//     properties are preferred; keep the descent only when it maps something
//  5. Record unmapped destinations with ranked suggestions, fail or skip on ambiguity
//
// Nested struct pairs met during execution get their own TypeMaps through the Store.
package plan
