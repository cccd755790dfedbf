// Package output renders a tree node to JSON text and delivers it to the
// selected sink: standard output, a file, or the system clipboard.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/treeson/internal/services/clipboard"
	"github.com/temirov/treeson/internal/tree"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	outputFilePermissions = 0o644

	// outputWrittenMessage is logged when output lands in a file instead of stdout.
	outputWrittenMessage = "output written"
	// errorWriteOutputFormat reports a failure writing the output file.
	errorWriteOutputFormat = "write output to %s: %w"
	// errorClipboardFormat reports a failure copying output to the clipboard.
	errorClipboardFormat = "copy output to clipboard: %w"
)

// RenderJSON marshals the node as JSON text: indented with two spaces by
// default, single-line when compact is requested.
func RenderJSON(rootNode *tree.Node, compact bool) (string, error) {
	if compact {
		encoded, jsonEncodeError := json.Marshal(rootNode)
		return string(encoded), jsonEncodeError
	}
	encoded, jsonEncodeError := json.MarshalIndent(rootNode, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// Writer delivers rendered output to its destination.
type Writer struct {
	standardOutput io.Writer
	logger         *zap.Logger
	copier         clipboard.Copier
}

// NewWriter constructs a writer. A nil standardOutput falls back to
// os.Stdout; a nil logger disables the file-written notice.
func NewWriter(standardOutput io.Writer, logger *zap.Logger, copier clipboard.Copier) *Writer {
	if standardOutput == nil {
		standardOutput = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{standardOutput: standardOutput, logger: logger, copier: copier}
}

// Write delivers renderedOutput. A non-empty outputPath selects file output
// with a notice on the diagnostic channel; otherwise the output goes to
// standard output. When copyToClipboard is set the output is additionally
// copied to the system clipboard before being written.
func (writer *Writer) Write(renderedOutput string, outputPath string, copyToClipboard bool) error {
	if copyToClipboard && writer.copier != nil {
		if copyError := writer.copier.Copy(renderedOutput); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
	}
	if outputPath != "" {
		if writeError := os.WriteFile(outputPath, []byte(renderedOutput+"\n"), outputFilePermissions); writeError != nil {
			return fmt.Errorf(errorWriteOutputFormat, outputPath, writeError)
		}
		writer.logger.Info(outputWrittenMessage, zap.String("path", outputPath))
		return nil
	}
	_, writeError := fmt.Fprintln(writer.standardOutput, renderedOutput)
	return writeError
}
