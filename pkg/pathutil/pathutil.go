package pathutil

import (
	"iter"
	"strconv"
	"strings"
)

var bracketReplacer = strings.NewReplacer("[", ".", "]", "")

// Split parses a dotted or bracketed field path into its segments. Bracket
// indexing is normalised, so "items[2].name" and "items.2.name" produce the
// same segments. Empty segments are dropped.
func Split(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	clean = bracketReplacer.Replace(clean)

	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

// Join appends a child segment to a parent path, handling empty halves.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// Get resolves a path into a tree. Missing intermediate segments or container
// mismatches yield (nil, false); Get never fails. An empty path returns the
// tree itself.
func Get(tree any, path string) (any, bool) {
	current := tree
	for _, segment := range Split(path) {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := sliceIndex(segment)
			if !ok || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set places value at path and returns the resulting tree. The input tree is
// never modified: containers along the root-to-leaf chain are copied, sibling
// branches are reused by reference. Intermediate containers are created as
// needed; a segment that parses as a non-negative integer selects a slice,
// anything else a map. Slices grow to fit the index.
func Set(tree any, path string, value any) any {
	segments := Split(path)
	if len(segments) == 0 {
		return tree
	}
	return assign(tree, segments, value)
}

func assign(node any, segments []string, value any) any {
	head := segments[0]
	if idx, ok := sliceIndex(head); ok {
		src, _ := node.([]any)
		length := len(src)
		if idx >= length {
			length = idx + 1
		}
		out := make([]any, length)
		copy(out, src)
		if len(segments) == 1 {
			out[idx] = value
		} else {
			out[idx] = assign(out[idx], segments[1:], value)
		}
		return out
	}

	src, _ := node.(map[string]any)
	out := make(map[string]any, len(src)+1)
	for key, child := range src {
		out[key] = child
	}
	if len(segments) == 1 {
		out[head] = value
	} else {
		out[head] = assign(out[head], segments[1:], value)
	}
	return out
}

// Delete removes the leaf at path and returns the resulting tree. When the
// path does not resolve, the original tree is returned unchanged (same
// reference). Deleting from a slice nils the element to keep sibling indices
// stable.
func Delete(tree any, path string) any {
	segments := Split(path)
	if len(segments) == 0 {
		return tree
	}
	out, _ := remove(tree, segments)
	return out
}

func remove(node any, segments []string) (any, bool) {
	switch typed := node.(type) {
	case map[string]any:
		key := segments[0]
		child, ok := typed[key]
		if !ok {
			return node, false
		}
		if len(segments) == 1 {
			out := make(map[string]any, len(typed))
			for k, v := range typed {
				if k != key {
					out[k] = v
				}
			}
			return out, true
		}
		next, changed := remove(child, segments[1:])
		if !changed {
			return node, false
		}
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		out[key] = next
		return out, true

	case []any:
		idx, ok := sliceIndex(segments[0])
		if !ok || idx >= len(typed) {
			return node, false
		}
		out := make([]any, len(typed))
		copy(out, typed)
		if len(segments) == 1 {
			out[idx] = nil
			return out, true
		}
		next, changed := remove(typed[idx], segments[1:])
		if !changed {
			return node, false
		}
		out[idx] = next
		return out, true

	default:
		return node, false
	}
}

// Keys returns a lazy depth-first sequence of every leaf path in the tree.
// Each leaf appears exactly once; ordering across sibling map keys follows map
// iteration and is therefore unspecified. The sequence is restartable.
func Keys(tree any) iter.Seq[string] {
	return func(yield func(string) bool) {
		walk(tree, "", yield)
	}
}

func walk(node any, prefix string, yield func(string) bool) bool {
	switch typed := node.(type) {
	case map[string]any:
		for key, child := range typed {
			if !walk(child, Join(prefix, key), yield) {
				return false
			}
		}
		return true
	case []any:
		for idx, child := range typed {
			if !walk(child, Join(prefix, strconv.Itoa(idx)), yield) {
				return false
			}
		}
		return true
	default:
		if prefix == "" {
			return true
		}
		return yield(prefix)
	}
}

// KeySet collects the leaf paths of a tree into a set.
func KeySet(tree any) map[string]struct{} {
	out := make(map[string]struct{})
	for path := range Keys(tree) {
		out[path] = struct{}{}
	}
	return out
}

// Leaves counts the leaf paths in a tree. Empty containers contribute no
// leaves, so Leaves reports zero for a tree of empty maps.
func Leaves(tree any) int {
	count := 0
	for range Keys(tree) {
		count++
	}
	return count
}

// Fill returns a tree with the same shape as shape and constant at every
// leaf. It is used to derive an all-touched map from an error tree.
func Fill(shape any, constant any) any {
	switch typed := shape.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = Fill(child, constant)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, child := range typed {
			out[idx] = Fill(child, constant)
		}
		return out
	default:
		return constant
	}
}

func sliceIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return idx, true
}
