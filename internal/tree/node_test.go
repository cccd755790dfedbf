package tree

import (
	"bytes"
	"encoding/json"
	"testing"
)

// marshalNode renders a node to compact JSON, failing the test on error.
func marshalNode(testingHandle *testing.T, node *Node) string {
	testingHandle.Helper()
	encoded, marshalError := json.Marshal(node)
	if marshalError != nil {
		testingHandle.Fatalf("marshal failed: %v", marshalError)
	}
	return string(encoded)
}

// TestNodeMarshalOrder verifies that the files entry is emitted first and the
// children follow in insertion order.
func TestNodeMarshalOrder(testingHandle *testing.T) {
	rootNode := NewNode()
	rootNode.EnsureChild("zeta")
	rootNode.AppendFile("b.txt")
	rootNode.EnsureChild("alpha")
	rootNode.AppendFile("a.txt")

	expectedJSON := `{"files":["b.txt","a.txt"],"zeta":{"files":[]},"alpha":{"files":[]}}`
	if encoded := marshalNode(testingHandle, rootNode); encoded != expectedJSON {
		testingHandle.Fatalf("unexpected encoding:\n got %s\nwant %s", encoded, expectedJSON)
	}
}

// TestNodeMarshalEscapesNames verifies that names needing JSON escaping are
// rendered as valid JSON.
func TestNodeMarshalEscapesNames(testingHandle *testing.T) {
	rootNode := NewNode()
	rootNode.EnsureChild(`dir"with"quotes`)
	rootNode.AppendFile("tab\tname")

	encoded := marshalNode(testingHandle, rootNode)
	var decoded map[string]any
	if unmarshalError := json.Unmarshal([]byte(encoded), &decoded); unmarshalError != nil {
		testingHandle.Fatalf("round trip failed for %s: %v", encoded, unmarshalError)
	}
	if _, childPresent := decoded[`dir"with"quotes`]; !childPresent {
		testingHandle.Fatalf("expected escaped child key in %s", encoded)
	}
}

// TestNodeMarshalZeroValueNormalizesFiles verifies that even a zero-value node
// carries an empty files list in its encoding.
func TestNodeMarshalZeroValueNormalizesFiles(testingHandle *testing.T) {
	var zeroNode Node
	encoded, marshalError := json.Marshal(&zeroNode)
	if marshalError != nil {
		testingHandle.Fatalf("marshal failed: %v", marshalError)
	}
	if string(encoded) != `{"files":[]}` {
		testingHandle.Fatalf("unexpected zero-value encoding: %s", encoded)
	}
}

// TestEnsureChildNeverReplaces verifies the create-if-absent contract.
func TestEnsureChildNeverReplaces(testingHandle *testing.T) {
	rootNode := NewNode()
	firstChild := rootNode.EnsureChild("shared")
	firstChild.AppendFile("kept.txt")

	secondChild := rootNode.EnsureChild("shared")
	if secondChild != firstChild {
		testingHandle.Fatal("expected EnsureChild to return the existing node")
	}
	if childNames := rootNode.ChildNames(); len(childNames) != 1 {
		testingHandle.Fatalf("expected a single child entry, got %v", childNames)
	}
}

// TestAttachChildKeepsExisting verifies that attaching under an occupied name
// does not erase the accumulated node.
func TestAttachChildKeepsExisting(testingHandle *testing.T) {
	rootNode := NewNode()
	populatedChild := rootNode.EnsureChild("src")
	populatedChild.AppendFile("main.go")

	rootNode.AttachChild("src", NewNode())

	survivingChild, childPresent := rootNode.Child("src")
	if !childPresent || len(survivingChild.Files()) != 1 {
		testingHandle.Fatalf("expected populated child to survive, got %+v", survivingChild)
	}
}

// TestNodeFileCount verifies the recursive file count used by the
// conservation property checks.
func TestNodeFileCount(testingHandle *testing.T) {
	rootNode := NewNode()
	rootNode.AppendFile("a.txt")
	nestedChild := rootNode.EnsureChild("sub").EnsureChild("deeper")
	nestedChild.AppendFile("b.txt")
	nestedChild.AppendFile("c.txt")

	if totalFiles := rootNode.FileCount(); totalFiles != 3 {
		testingHandle.Fatalf("FileCount = %d, want 3", totalFiles)
	}
}

// TestNodeMarshalIndentIsDeterministic verifies byte-identical repeated
// rendering, the idempotence half of the output contract.
func TestNodeMarshalIndentIsDeterministic(testingHandle *testing.T) {
	rootNode := NewNode()
	rootNode.AppendFile("a.txt")
	rootNode.EnsureChild("sub").AppendFile("b.txt")

	firstRendering, firstError := json.MarshalIndent(rootNode, "", "  ")
	if firstError != nil {
		testingHandle.Fatalf("first marshal failed: %v", firstError)
	}
	secondRendering, secondError := json.MarshalIndent(rootNode, "", "  ")
	if secondError != nil {
		testingHandle.Fatalf("second marshal failed: %v", secondError)
	}
	if !bytes.Equal(firstRendering, secondRendering) {
		testingHandle.Fatalf("renderings differ:\n%s\n%s", firstRendering, secondRendering)
	}
}
