// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/treeson/internal/config"
	"github.com/temirov/treeson/internal/github"
	"github.com/temirov/treeson/internal/output"
	"github.com/temirov/treeson/internal/services/clipboard"
	"github.com/temirov/treeson/internal/tree"
	"github.com/temirov/treeson/internal/utils"
)

const (
	rootUse              = "treeson [target]"
	rootShortDescription = "convert a directory or GitHub repository structure to JSON"
	rootLongDescription  = `treeson converts a directory tree or a GitHub repository listing into a
nested JSON document describing the hierarchy. The target is a directory path
or a repository URL; the current directory is used when omitted.`
	rootUsageExample = `  # Current directory, pretty-printed
  treeson

  # Specific directory with extra ignores, written to a file
  treeson -i "*.log" -i temp -o layout.json /path/to/dir

  # GitHub repository on a branch, compact output
  treeson --branch dev --compact https://github.com/user/repo`

	ignoreFlagName        = "ignore"
	ignoreFlagShorthand   = "i"
	branchFlagName        = "branch"
	branchFlagShorthand   = "b"
	includeHiddenFlagName = "include-hidden"
	maxDepthFlagName      = "max-depth"
	outputFlagName        = "output"
	outputFlagShorthand   = "o"
	compactFlagName       = "compact"
	clipboardFlagName     = "clipboard"
	configFlagName        = "config"
	versionFlagName       = "version"

	ignoreFlagDescription        = "additional file or directory name to ignore (repeatable)"
	branchFlagDescription        = "branch name for repository targets"
	includeHiddenFlagDescription = "include hidden files and directories"
	maxDepthFlagDescription      = "maximum directory depth to traverse (negative means unlimited)"
	outputFlagDescription        = "write output to a file instead of stdout"
	compactFlagDescription       = "output compact JSON without indentation"
	clipboardFlagDescription     = "copy output to the system clipboard"
	configFlagDescription        = "path to a configuration file"
	versionFlagDescription       = "display application version"

	versionTemplate        = "treeson version: %s\n"
	defaultTarget          = "."
	defaultBranchName      = "main"
	unlimitedDepthSentinel = -1

	githubTokenEnvironmentVariable = "GITHUB_TOKEN"

	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorRenderOutputFormat reports a JSON rendering failure.
	errorRenderOutputFormat = "rendering output: %w"
)

// Execute runs the treeson application.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.ExecuteContext(ctx)
}

// runOptions stores the flag values of one invocation.
type runOptions struct {
	ignoreNames     []string
	branchName      string
	includeHidden   bool
	maxDepth        int
	outputPath      string
	compactOutput   bool
	copyToClipboard bool
	configPath      string
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var options runOptions
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			targetArgument := defaultTarget
			if len(arguments) == 1 {
				targetArgument = arguments[0]
			}
			return runConversion(command, targetArgument, options, logger)
		},
	}

	rootCommand.Flags().StringArrayVarP(&options.ignoreNames, ignoreFlagName, ignoreFlagShorthand, nil, ignoreFlagDescription)
	rootCommand.Flags().StringVarP(&options.branchName, branchFlagName, branchFlagShorthand, defaultBranchName, branchFlagDescription)
	rootCommand.Flags().BoolVar(&options.includeHidden, includeHiddenFlagName, false, includeHiddenFlagDescription)
	rootCommand.Flags().IntVar(&options.maxDepth, maxDepthFlagName, unlimitedDepthSentinel, maxDepthFlagDescription)
	rootCommand.Flags().StringVarP(&options.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	rootCommand.Flags().BoolVar(&options.compactOutput, compactFlagName, false, compactFlagDescription)
	rootCommand.Flags().BoolVar(&options.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	return rootCommand
}

// runConversion performs one conversion: resolve the effective configuration,
// produce the tree for a local or remote target, render it, and deliver it.
func runConversion(command *cobra.Command, targetArgument string, options runOptions, logger *zap.Logger) error {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: options.configPath,
	})
	if configurationError != nil {
		return configurationError
	}

	effective := resolveEffectiveOptions(command, options, applicationConfiguration)
	settings := config.NewSettings(effective.ignoreNames, effective.includeHidden, effective.maxDepth)

	var rootNode *tree.Node
	if github.IsRepositoryURL(targetArgument) {
		remoteNode, remoteError := convertRepository(command.Context(), targetArgument, effective, applicationConfiguration, settings)
		if remoteError != nil {
			return remoteError
		}
		rootNode = remoteNode
	} else {
		localNode, localError := convertDirectory(targetArgument, settings, logger)
		if localError != nil {
			return localError
		}
		rootNode = localNode
	}

	renderedOutput, renderError := output.RenderJSON(rootNode, effective.compactOutput)
	if renderError != nil {
		return fmt.Errorf(errorRenderOutputFormat, renderError)
	}

	writer := output.NewWriter(command.OutOrStdout(), logger, clipboard.NewService())
	return writer.Write(renderedOutput, effective.outputPath, effective.copyToClipboard)
}

// effectiveOptions is the fully resolved configuration of one run after
// applying flag > local file > global file > built-in default precedence.
type effectiveOptions struct {
	ignoreNames     []string
	branchName      string
	includeHidden   bool
	maxDepth        *int
	outputPath      string
	compactOutput   bool
	copyToClipboard bool
}

// resolveEffectiveOptions overlays explicit flag values on configuration-file
// defaults. Ignore names accumulate across sources instead of replacing each
// other.
func resolveEffectiveOptions(command *cobra.Command, options runOptions, applicationConfiguration config.ApplicationConfiguration) effectiveOptions {
	effective := effectiveOptions{
		ignoreNames: append(append([]string{}, applicationConfiguration.Ignore...), options.ignoreNames...),
		branchName:  defaultBranchName,
		outputPath:  options.outputPath,
	}

	if applicationConfiguration.Branch != "" {
		effective.branchName = applicationConfiguration.Branch
	}
	if command.Flags().Changed(branchFlagName) {
		effective.branchName = options.branchName
	}

	if applicationConfiguration.IncludeHidden != nil {
		effective.includeHidden = *applicationConfiguration.IncludeHidden
	}
	if command.Flags().Changed(includeHiddenFlagName) {
		effective.includeHidden = options.includeHidden
	}

	if applicationConfiguration.MaxDepth != nil && *applicationConfiguration.MaxDepth >= 0 {
		configuredDepth := *applicationConfiguration.MaxDepth
		effective.maxDepth = &configuredDepth
	}
	if command.Flags().Changed(maxDepthFlagName) {
		if options.maxDepth >= 0 {
			flagDepth := options.maxDepth
			effective.maxDepth = &flagDepth
		} else {
			effective.maxDepth = nil
		}
	}

	if applicationConfiguration.Compact != nil {
		effective.compactOutput = *applicationConfiguration.Compact
	}
	if command.Flags().Changed(compactFlagName) {
		effective.compactOutput = options.compactOutput
	}

	if applicationConfiguration.Clipboard != nil {
		effective.copyToClipboard = *applicationConfiguration.Clipboard
	}
	if command.Flags().Changed(clipboardFlagName) {
		effective.copyToClipboard = options.copyToClipboard
	}

	return effective
}

// convertDirectory produces the tree for a local directory target.
func convertDirectory(targetArgument string, settings config.Settings, logger *zap.Logger) (*tree.Node, error) {
	absoluteTargetPath, absolutePathError := filepath.Abs(targetArgument)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, targetArgument, absolutePathError)
	}
	traverser := tree.NewTraverser(settings, logger)
	return traverser.Traverse(absoluteTargetPath)
}

// convertRepository produces the tree for a remote repository target.
func convertRepository(
	ctx context.Context,
	targetArgument string,
	effective effectiveOptions,
	applicationConfiguration config.ApplicationConfiguration,
	settings config.Settings,
) (*tree.Node, error) {
	repository, parseError := github.ParseRepositoryURL(targetArgument)
	if parseError != nil {
		return nil, parseError
	}

	authorizationToken := applicationConfiguration.GitHub.Token
	if authorizationToken == "" {
		authorizationToken = os.Getenv(githubTokenEnvironmentVariable)
	}

	client := github.NewClient(nil).
		WithAPIBase(applicationConfiguration.GitHub.APIBaseURL).
		WithAuthorizationToken(authorizationToken)

	flatEntries, fetchError := client.FetchTreeEntries(ctx, repository, effective.branchName)
	if fetchError != nil {
		return nil, fetchError
	}

	builder := tree.NewBuilder(settings)
	return builder.Build(flatEntries), nil
}
