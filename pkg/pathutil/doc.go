// Package pathutil implements immutable operations on nested value trees
// addressed by dotted field paths (for example "author.email" or
// "items.2.name"). Trees are plain map[string]any and []any nests; every write
// returns a new tree that shares untouched branches with the previous version,
// so a mutation costs O(path depth) regardless of total tree size. The package
// is the addressing substrate for the form state engine and for validators
// that map failures back onto fields.
package pathutil
