package tree

import "strings"

const (
	// EntryTypeBlob marks a flat-listing entry as a file.
	EntryTypeBlob = "blob"
	// EntryTypeTree marks a flat-listing entry as a directory.
	EntryTypeTree = "tree"

	pathSegmentSeparator = "/"
)

// Entry is one record of a flat repository listing: a slash-delimited
// relative path plus a blob or tree type tag.
type Entry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Builder reconstructs a Node from a flat slash-delimited listing, creating
// intermediate directory nodes on demand.
type Builder struct {
	settings ignorePredicate
}

// ignorePredicate is the slice of settings the builder depends on.
type ignorePredicate interface {
	ShouldIgnore(entryName string) bool
}

// NewBuilder returns a builder applying the provided ignore predicate to
// every path segment.
func NewBuilder(settings ignorePredicate) *Builder {
	return &Builder{settings: settings}
}

// Build processes entries in the supplied order, preserving it in the result;
// unlike the local traverser, nothing is re-sorted. An entry is discarded
// entirely when any of its path segments matches the ignore predicate.
// Intermediate directory nodes are created once and reused by later entries,
// and an explicit tree entry never erases a node a deeper entry already
// populated. Every node in the result carries a "files" list, even when empty.
func (builder *Builder) Build(flatEntries []Entry) *Node {
	rootNode := NewNode()

entryLoop:
	for _, flatEntry := range flatEntries {
		pathSegments := strings.Split(flatEntry.Path, pathSegmentSeparator)
		for _, pathSegment := range pathSegments {
			if builder.settings.ShouldIgnore(pathSegment) {
				continue entryLoop
			}
		}

		currentNode := rootNode
		for _, pathSegment := range pathSegments[:len(pathSegments)-1] {
			currentNode = currentNode.EnsureChild(pathSegment)
		}

		finalSegment := pathSegments[len(pathSegments)-1]
		switch flatEntry.Type {
		case EntryTypeBlob:
			currentNode.AppendFile(finalSegment)
		case EntryTypeTree:
			currentNode.EnsureChild(finalSegment)
		}
	}

	return rootNode
}
