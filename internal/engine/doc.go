// Package engine executes TypeMaps against instances.
//
// For every property mapping, in order, the engine reads the source path, lets the
// configured interceptor substitute the value, evaluates the mapping condition (or the
// configured property condition), handles absent values per the skip-null setting,
// converts, and writes the destination path, provisioning nil intermediates.
//
// Struct-like values met during conversion are mapped through their own TypeMaps, so
// nested pairs share the cache of the Store that built the outer map.
package engine
