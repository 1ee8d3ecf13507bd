package runtime

import (
	"fmt"
	"io"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/CliForge/pinterest-ads-cli/pkg/output"
	"github.com/spf13/cobra"
)

// newListCmd creates the list command.
func (rt *Runtime) newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources and their operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				entries := make([]any, 0, len(rt.tree.Resources))
				for _, res := range rt.tree.Resources {
					ops := make([]any, 0, len(res.Operations))
					for _, op := range res.Operations {
						ops = append(ops, op.Name)
					}
					entries = append(entries, map[string]any{"resource": res.Name, "ops": ops})
				}
				return rt.writePrettyJSON(entries)
			}

			var sb strings.Builder
			for _, res := range rt.tree.Resources {
				sb.WriteString(res.Name + "\n")
				for _, op := range res.Operations {
					sb.WriteString("  " + op.Name + "\n")
				}
			}
			_, err := io.WriteString(rt.stdout, sb.String())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

// newDescribeCmd creates the describe command.
func (rt *Runtime) newDescribeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "describe <resource> <op>",
		Short: "Show the method, path, auth and parameters of an operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := rt.tree.Find(args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return rt.writePrettyJSON(op)
			}
			_, err = io.WriteString(rt.stdout, describeOperation(args[0], op))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

// describeOperation renders the human-readable description of op.
func describeOperation(resource string, op *commandtree.Operation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", resource, op.Name)
	fmt.Fprintf(&sb, "  method: %s\n", op.Method)
	fmt.Fprintf(&sb, "  path: %s\n", op.Path)
	fmt.Fprintf(&sb, "  paginated: %t\n", op.Paginated)

	if schemes := op.SecuritySchemes(); len(schemes) > 0 {
		fmt.Fprintf(&sb, "  auth: %s\n", strings.Join(schemes, " | "))
	}

	if rb := op.RequestBody; rb != nil {
		fmt.Fprintf(&sb, "  request_body: required=%t\n", rb.Required)
		if len(rb.ContentTypes) > 0 {
			fmt.Fprintf(&sb, "    content_types: %s\n", strings.Join(rb.ContentTypes, ", "))
		}
	}

	if len(op.Params) > 0 {
		sb.WriteString("  params:\n")
		for _, p := range op.Params {
			fmt.Fprintf(&sb, "    --%s  %s (%s, required=%t)\n", p.Flag, p.ValueName(), p.In, p.Required)
		}
	}
	return sb.String()
}

// newTreeCmd creates the tree command.
func (rt *Runtime) newTreeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the command tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return rt.writePrettyJSON(rt.tree)
			}
			_, err := fmt.Fprintln(rt.stdout, "Run with --json for machine-readable output.")
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}

// newVersionCmd creates the version command.
func (rt *Runtime) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiVersion := rt.tree.APIVersion
			if apiVersion == "" {
				apiVersion = "unknown"
			}
			_, err := fmt.Fprintf(rt.stdout, "%s %s (api %s)\n", AppName, rt.version, apiVersion)
			return err
		},
	}
}

// writePrettyJSON prints v as indented JSON regardless of --output.
func (rt *Runtime) writePrettyJSON(v any) error {
	return rt.outputManager.Format(rt.stdout, v, "json", output.NewFormatConfig().WithPretty(true))
}
