// Package tree implements the nested directory-tree data model together with
// the filesystem traverser and the flat-listing builder that produce it.
package tree

import (
	"bytes"
	"encoding/json"
)

// Node represents one directory: the names of files directly inside it plus a
// named child node per subdirectory. Child insertion order is preserved and
// reproduced in marshalled JSON, with the "files" entry always emitted first.
// A node is owned exclusively by its producer until returned, after which it
// is treated as immutable.
type Node struct {
	fileNames  []string
	childOrder []string
	children   map[string]*Node
}

// NewNode returns an empty node carrying a present, empty file list.
func NewNode() *Node {
	return &Node{fileNames: []string{}}
}

// AppendFile records a file name directly inside the node.
func (node *Node) AppendFile(fileName string) {
	node.fileNames = append(node.fileNames, fileName)
}

// EnsureChild returns the child stored under childName, creating an empty one
// when absent. An existing child is never replaced, so children accumulated by
// earlier entries survive a later explicit directory entry for the same name.
func (node *Node) EnsureChild(childName string) *Node {
	if existingChild, childExists := node.children[childName]; childExists {
		return existingChild
	}
	createdChild := NewNode()
	node.attach(childName, createdChild)
	return createdChild
}

// AttachChild stores a fully built child node under childName. An existing
// child is never replaced.
func (node *Node) AttachChild(childName string, childNode *Node) {
	if _, childExists := node.children[childName]; childExists {
		return
	}
	node.attach(childName, childNode)
}

func (node *Node) attach(childName string, childNode *Node) {
	if node.children == nil {
		node.children = make(map[string]*Node)
	}
	node.children[childName] = childNode
	node.childOrder = append(node.childOrder, childName)
}

// Child returns the child stored under childName.
func (node *Node) Child(childName string) (*Node, bool) {
	childNode, childExists := node.children[childName]
	return childNode, childExists
}

// Files returns the file names in insertion order.
func (node *Node) Files() []string {
	return append([]string{}, node.fileNames...)
}

// ChildNames returns the subdirectory names in insertion order.
func (node *Node) ChildNames() []string {
	return append([]string{}, node.childOrder...)
}

// FileCount returns the total number of files in the node and all descendants.
func (node *Node) FileCount() int {
	totalFiles := len(node.fileNames)
	for _, childName := range node.childOrder {
		totalFiles += node.children[childName].FileCount()
	}
	return totalFiles
}

// MarshalJSON renders the node as a JSON object holding the "files" array
// followed by child objects in insertion order. The rendering is fully
// deterministic, so marshalling an unchanged tree twice is byte-identical.
func (node *Node) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(`{"files":`)
	fileNames := node.fileNames
	if fileNames == nil {
		fileNames = []string{}
	}
	encodedFiles, filesEncodeError := json.Marshal(fileNames)
	if filesEncodeError != nil {
		return nil, filesEncodeError
	}
	buffer.Write(encodedFiles)
	for _, childName := range node.childOrder {
		buffer.WriteByte(',')
		encodedName, nameEncodeError := json.Marshal(childName)
		if nameEncodeError != nil {
			return nil, nameEncodeError
		}
		buffer.Write(encodedName)
		buffer.WriteByte(':')
		encodedChild, childEncodeError := node.children[childName].MarshalJSON()
		if childEncodeError != nil {
			return nil, childEncodeError
		}
		buffer.Write(encodedChild)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}
