// Package builder converts a command tree to Cobra commands.
package builder

import (
	"fmt"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/spf13/cobra"
)

// Annotation keys stored on operation commands.
const (
	AnnotationResource  = "resource"
	AnnotationOperation = "operation"
	AnnotationMethod    = "method"
	AnnotationPath      = "path"
	AnnotationPaginated = "paginated"
)

// Builder builds Cobra commands from a command tree.
type Builder struct {
	tree       *commandtree.CommandTree
	config     *BuilderConfig
	flags      *FlagBuilder
	commandMap map[string]*cobra.Command
}

// BuilderConfig configures command building behavior.
type BuilderConfig struct {
	// RootName is the name of the root command
	RootName string
	// RootDescription is the description of the root command
	RootDescription string
	// ReservedFlags are persistent flags of the root. Parameters whose flag
	// has the same name read the persistent flag instead of a local one.
	ReservedFlags []string
	// DefaultExecutor runs every operation command.
	DefaultExecutor func(cmd *cobra.Command, args []string) error
}

// NewBuilder creates a new command builder.
func NewBuilder(tree *commandtree.CommandTree, config *BuilderConfig) *Builder {
	if config == nil {
		config = DefaultBuilderConfig()
	}
	return &Builder{
		tree:       tree,
		config:     config,
		flags:      NewFlagBuilder(config.ReservedFlags),
		commandMap: make(map[string]*cobra.Command),
	}
}

// DefaultBuilderConfig returns default builder configuration.
func DefaultBuilderConfig() *BuilderConfig {
	return &BuilderConfig{
		RootName:        "pinterest-ads",
		RootDescription: "Pinterest Ads API command-line client",
	}
}

// Build creates the root command with one group per resource and one
// subcommand per operation.
func (b *Builder) Build() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           b.config.RootName,
		Short:         b.config.RootDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	b.commandMap[""] = rootCmd

	if err := b.AddResources(rootCmd); err != nil {
		return nil, err
	}
	return rootCmd, nil
}

// AddResources attaches the resource groups to parent.
func (b *Builder) AddResources(parent *cobra.Command) error {
	for _, res := range b.tree.Resources {
		groupCmd := b.buildResourceCommand(res)
		for _, op := range res.Operations {
			opCmd, err := b.buildOperationCommand(res, op)
			if err != nil {
				return fmt.Errorf("failed to build command for %s %s: %w", res.Name, op.Name, err)
			}
			groupCmd.AddCommand(opCmd)
			b.commandMap[res.Name+" "+op.Name] = opCmd
		}
		parent.AddCommand(groupCmd)
	}
	return nil
}

// buildResourceCommand creates a group command for a resource.
func (b *Builder) buildResourceCommand(res *commandtree.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   res.Name,
		Short: fmt.Sprintf("%s operations", res.Name),
	}
	b.commandMap[res.Name] = cmd
	return cmd
}

// buildOperationCommand builds a command for a single operation.
func (b *Builder) buildOperationCommand(res *commandtree.Resource, op *commandtree.Operation) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   op.Name,
		Short: op.Summary,
		Long:  describe(op),
		Args:  cobra.NoArgs,
	}

	cmd.Annotations = map[string]string{
		AnnotationResource:  res.Name,
		AnnotationOperation: op.Name,
		AnnotationMethod:    op.Method,
		AnnotationPath:      op.Path,
		AnnotationPaginated: fmt.Sprint(op.Paginated),
	}

	if err := b.flags.AddOperationFlags(cmd, op); err != nil {
		return nil, err
	}

	if b.config.DefaultExecutor != nil {
		cmd.RunE = b.config.DefaultExecutor
	}

	return cmd, nil
}

// describe is the long help of an operation command.
func describe(op *commandtree.Operation) string {
	var sb strings.Builder
	if op.Summary != "" {
		sb.WriteString(op.Summary)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "%s %s", op.Method, op.Path)
	if op.Paginated {
		sb.WriteString("\n\nPaginated: use --all to fetch every page.")
	}
	return sb.String()
}

// GetCommandByPath retrieves a command by "resource" or "resource op".
func (b *Builder) GetCommandByPath(path string) (*cobra.Command, bool) {
	cmd, ok := b.commandMap[path]
	return cmd, ok
}

// OperationOf returns the resource and operation names of an operation
// command.
func OperationOf(cmd *cobra.Command) (resource, operation string, ok bool) {
	if cmd.Annotations == nil {
		return "", "", false
	}
	resource, ok1 := cmd.Annotations[AnnotationResource]
	operation, ok2 := cmd.Annotations[AnnotationOperation]
	return resource, operation, ok1 && ok2
}

// toFlagName converts a parameter name to a flag name.
func toFlagName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, " ", "-")
	name = camelToKebab(name)
	return strings.ToLower(name)
}

// camelToKebab converts camelCase to kebab-case.
func camelToKebab(s string) string {
	var result strings.Builder
	prevWasUpper := false
	for i, r := range s {
		isUpper := r >= 'A' && r <= 'Z'
		// "API" stays one word.
		if i > 0 && isUpper && !prevWasUpper && s[i-1] != '-' {
			result.WriteRune('-')
		}
		result.WriteRune(r)
		prevWasUpper = isUpper
	}
	return result.String()
}
