package tree

import (
	"reflect"
	"testing"

	"github.com/temirov/treeson/internal/config"
)

// buildTestNode runs the builder over entries with the provided ignores.
func buildTestNode(additionalIgnores []string, includeHidden bool, flatEntries []Entry) *Node {
	builder := NewBuilder(config.NewSettings(additionalIgnores, includeHidden, nil))
	return builder.Build(flatEntries)
}

// TestBuildTreeEntryDoesNotEraseEarlierChildren verifies that an explicit
// directory entry arriving after its own child keeps the accumulated node.
func TestBuildTreeEntryDoesNotEraseEarlierChildren(testingHandle *testing.T) {
	rootNode := buildTestNode(nil, false, []Entry{
		{Path: "src/main.go", Type: EntryTypeBlob},
		{Path: "src", Type: EntryTypeTree},
	})

	sourceNode, sourcePresent := rootNode.Child("src")
	if !sourcePresent {
		testingHandle.Fatal("expected the src directory to exist")
	}
	if fileNames := sourceNode.Files(); !reflect.DeepEqual(fileNames, []string{"main.go"}) {
		testingHandle.Fatalf("expected main.go to survive the tree entry, got %v", fileNames)
	}
	if encoded := marshalNode(testingHandle, rootNode); encoded != `{"files":[],"src":{"files":["main.go"]}}` {
		testingHandle.Fatalf("unexpected encoding: %s", encoded)
	}
}

// TestBuildCreatesIntermediateDirectories verifies implicit node creation for
// path segments that never appear as their own entries.
func TestBuildCreatesIntermediateDirectories(testingHandle *testing.T) {
	rootNode := buildTestNode(nil, false, []Entry{
		{Path: "a/b/c/d.txt", Type: EntryTypeBlob},
	})

	currentNode := rootNode
	for _, segmentName := range []string{"a", "b", "c"} {
		childNode, childPresent := currentNode.Child(segmentName)
		if !childPresent {
			testingHandle.Fatalf("expected intermediate directory %q", segmentName)
		}
		currentNode = childNode
	}
	if fileNames := currentNode.Files(); !reflect.DeepEqual(fileNames, []string{"d.txt"}) {
		testingHandle.Fatalf("expected the leaf file, got %v", fileNames)
	}
}

// TestBuildSharedIntermediatesAreReused verifies that multiple entries below
// one directory land in the same node.
func TestBuildSharedIntermediatesAreReused(testingHandle *testing.T) {
	rootNode := buildTestNode(nil, false, []Entry{
		{Path: "pkg/one.go", Type: EntryTypeBlob},
		{Path: "pkg/two.go", Type: EntryTypeBlob},
		{Path: "pkg/sub", Type: EntryTypeTree},
	})

	packageNode, packagePresent := rootNode.Child("pkg")
	if !packagePresent {
		testingHandle.Fatal("expected the pkg directory to exist")
	}
	if fileNames := packageNode.Files(); !reflect.DeepEqual(fileNames, []string{"one.go", "two.go"}) {
		testingHandle.Fatalf("expected both files in pkg, got %v", fileNames)
	}
	if _, subdirectoryPresent := packageNode.Child("sub"); !subdirectoryPresent {
		testingHandle.Fatal("expected the explicit sub directory to exist")
	}
}

// TestBuildIgnoreAppliesToEverySegment verifies that a matching segment
// anywhere in the path discards the whole entry, including as an intermediate.
func TestBuildIgnoreAppliesToEverySegment(testingHandle *testing.T) {
	rootNode := buildTestNode([]string{"secret"}, false, []Entry{
		{Path: "keep/visible.txt", Type: EntryTypeBlob},
		{Path: "secret/hidden.txt", Type: EntryTypeBlob},
		{Path: "nested/secret/also_hidden.txt", Type: EntryTypeBlob},
		{Path: "secret", Type: EntryTypeTree},
		{Path: ".dotdir/file.txt", Type: EntryTypeBlob},
	})

	if _, secretPresent := rootNode.Child("secret"); secretPresent {
		testingHandle.Fatal("expected the ignored directory to leave no trace")
	}
	nestedNode, nestedPresent := rootNode.Child("nested")
	if nestedPresent && len(nestedNode.ChildNames()) != 0 {
		testingHandle.Fatalf("expected no children below nested, got %v", nestedNode.ChildNames())
	}
	if _, dotPresent := rootNode.Child(".dotdir"); dotPresent {
		testingHandle.Fatal("expected the hidden segment to discard the entry")
	}
	keepNode, keepPresent := rootNode.Child("keep")
	if !keepPresent || !reflect.DeepEqual(keepNode.Files(), []string{"visible.txt"}) {
		testingHandle.Fatal("expected the clean entry to survive")
	}
}

// TestBuildZeroEntriesYieldsNormalizedRoot verifies that an empty listing
// still produces a root carrying an empty files list.
func TestBuildZeroEntriesYieldsNormalizedRoot(testingHandle *testing.T) {
	rootNode := buildTestNode(nil, false, nil)
	if encoded := marshalNode(testingHandle, rootNode); encoded != `{"files":[]}` {
		testingHandle.Fatalf("expected normalized empty root, got %s", encoded)
	}
}

// TestBuildPreservesListingOrder verifies that entries are processed in the
// order supplied, without re-sorting.
func TestBuildPreservesListingOrder(testingHandle *testing.T) {
	rootNode := buildTestNode(nil, false, []Entry{
		{Path: "zebra.txt", Type: EntryTypeBlob},
		{Path: "beta", Type: EntryTypeTree},
		{Path: "alpha.txt", Type: EntryTypeBlob},
		{Path: "acorn", Type: EntryTypeTree},
	})

	if fileNames := rootNode.Files(); !reflect.DeepEqual(fileNames, []string{"zebra.txt", "alpha.txt"}) {
		testingHandle.Fatalf("unexpected file order: %v", fileNames)
	}
	if childNames := rootNode.ChildNames(); !reflect.DeepEqual(childNames, []string{"beta", "acorn"}) {
		testingHandle.Fatalf("unexpected directory order: %v", childNames)
	}
}

// TestBuildSkipsUnknownEntryTypes verifies that listing records with types
// other than blob and tree are dropped.
func TestBuildSkipsUnknownEntryTypes(testingHandle *testing.T) {
	rootNode := buildTestNode(nil, false, []Entry{
		{Path: "module.link", Type: "commit"},
		{Path: "real.txt", Type: EntryTypeBlob},
	})

	if fileNames := rootNode.Files(); !reflect.DeepEqual(fileNames, []string{"real.txt"}) {
		testingHandle.Fatalf("expected only the blob entry, got %v", fileNames)
	}
}
