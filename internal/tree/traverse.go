package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/treeson/internal/config"
)

const (
	// warningListDirectoryMessage is logged when a directory cannot be listed.
	warningListDirectoryMessage = "permission denied listing directory"
	// warningInspectEntryMessage is logged when a single entry cannot be inspected.
	warningInspectEntryMessage = "skipping inaccessible entry"

	// errorStatTargetFormat reports failure to retrieve target information.
	errorStatTargetFormat = "stat %s: %w"
	// errorTargetFormat attaches the offending path to a typed sentinel.
	errorTargetFormat = "%w: %s"
)

// Traverser walks a directory tree and produces its Node representation.
// Directory listing and stat access go through injectable functions so access
// failures can be exercised in tests; the defaults use the os package.
type Traverser struct {
	settings      config.Settings
	logger        *zap.Logger
	listDirectory func(directoryPath string) ([]os.DirEntry, error)
	statPath      func(targetPath string) (os.FileInfo, error)
}

// NewTraverser returns a traverser bound to the provided settings. A nil
// logger disables diagnostics.
func NewTraverser(settings config.Settings, logger *zap.Logger) *Traverser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Traverser{
		settings:      settings,
		logger:        logger,
		listDirectory: os.ReadDir,
		statPath:      os.Stat,
	}
}

// Traverse converts the directory at rootPath into a Node. It fails with
// ErrTargetNotFound when rootPath does not exist and with ErrNotADirectory
// when it exists but is not a directory. Access denials below the root are
// absorbed: the affected subtree or entry is omitted, a warning is logged, and
// traversal continues with a best-effort result.
func (traverser *Traverser) Traverse(rootPath string) (*Node, error) {
	targetInfo, statError := traverser.statPath(rootPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return nil, fmt.Errorf(errorTargetFormat, ErrTargetNotFound, rootPath)
		}
		return nil, fmt.Errorf(errorStatTargetFormat, rootPath, statError)
	}
	if !targetInfo.IsDir() {
		return nil, fmt.Errorf(errorTargetFormat, ErrNotADirectory, rootPath)
	}

	rootNode, rootListError := traverser.traverseDirectory(rootPath, 0)
	if rootListError != nil {
		traverser.logger.Warn(warningListDirectoryMessage,
			zap.String("path", rootPath), zap.Error(rootListError))
	}
	return rootNode, nil
}

// traverseDirectory builds the node for one directory. The depth bound is
// checked before listing children, so an excluded subtree costs nothing
// beyond the check itself. The returned error reports only this directory's
// own listing failure; deeper failures are absorbed where they occur.
func (traverser *Traverser) traverseDirectory(directoryPath string, currentDepth int) (*Node, error) {
	resultNode := NewNode()

	if !traverser.settings.WithinDepth(currentDepth) {
		return resultNode, nil
	}

	directoryEntries, listError := traverser.listDirectory(directoryPath)
	if listError != nil {
		return resultNode, listError
	}

	sortDirectoryEntries(directoryEntries)

	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if traverser.settings.ShouldIgnore(entryName) {
			continue
		}
		childPath := filepath.Join(directoryPath, entryName)
		if directoryEntry.IsDir() {
			childNode, childListError := traverser.traverseDirectory(childPath, currentDepth+1)
			if childListError != nil {
				traverser.logger.Warn(warningInspectEntryMessage,
					zap.String("path", childPath), zap.Error(childListError))
				continue
			}
			resultNode.AttachChild(entryName, childNode)
			continue
		}
		if _, entryInfoError := directoryEntry.Info(); entryInfoError != nil {
			traverser.logger.Warn(warningInspectEntryMessage,
				zap.String("path", childPath), zap.Error(entryInfoError))
			continue
		}
		resultNode.AppendFile(entryName)
	}

	return resultNode, nil
}

// sortDirectoryEntries orders entries directories first, then files, each
// group case-insensitively alphabetical by name. The sort is stable so names
// differing only in case keep their listing order.
func sortDirectoryEntries(directoryEntries []os.DirEntry) {
	sort.SliceStable(directoryEntries, func(leftIndex, rightIndex int) bool {
		leftEntry, rightEntry := directoryEntries[leftIndex], directoryEntries[rightIndex]
		if leftEntry.IsDir() != rightEntry.IsDir() {
			return leftEntry.IsDir()
		}
		return strings.ToLower(leftEntry.Name()) < strings.ToLower(rightEntry.Name())
	})
}
