package runtime

import (
	"fmt"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/builder"
	"github.com/CliForge/pinterest-ads-cli/internal/executor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runOperation executes a command tree operation and renders the response.
func (rt *Runtime) runOperation(cmd *cobra.Command, _ []string) error {
	resource, operation, ok := builder.OperationOf(cmd)
	if !ok {
		return fmt.Errorf("command %s is not an operation", cmd.CommandPath())
	}

	inputs, body, err := builder.InputsFromCommand(cmd)
	if err != nil {
		return err
	}
	all, pages, err := rt.paginationOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	exec, err := rt.newExecutor(ctx)
	if err != nil {
		return err
	}

	rt.logger.Debug("invoking operation",
		zap.String("resource", resource),
		zap.String("operation", operation),
		zap.Bool("all", all))

	result, err := exec.Invoke(ctx, &executor.Invocation{
		Resource:   resource,
		Operation:  operation,
		Inputs:     inputs,
		Body:       body,
		All:        all,
		Pagination: pages,
	})
	if err != nil {
		return err
	}

	return rt.outputManager.Render(rt.stdout, result, rt.renderOptions())
}

// newRawCmd creates the raw command for requests outside the tree.
func (rt *Runtime) newRawCmd() *cobra.Command {
	var (
		authScheme string
		params     string
		body       string
		form       string
	)

	cmd := &cobra.Command{
		Use:   "raw <METHOD> <PATH>",
		Short: "Send a request to any API path",
		Long: `Send a request to any API path. The path is appended to the base URL and
the full response is printed.

Examples:
  pinterest-ads raw get /user_account
  pinterest-ads raw post /oauth/token --auth basic --form '{"grant_type":"client_credentials"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exec, err := rt.newExecutor(ctx)
			if err != nil {
				return err
			}

			result, err := exec.Raw(ctx, &executor.RawRequest{
				Method: strings.ToUpper(args[0]),
				Path:   args[1],
				Auth:   authScheme,
				Params: params,
				Body:   executor.BodyInputs{JSON: body, Form: form},
			})
			if err != nil {
				return err
			}

			opts := rt.renderOptions()
			opts.Raw = true
			return rt.outputManager.Render(rt.stdout, result, opts)
		},
	}

	cmd.Flags().StringVar(&authScheme, "auth", "bearer", "Credential to send: bearer, basic or conversion")
	cmd.Flags().StringVar(&params, "params", "", "Query parameters as a JSON object")
	cmd.Flags().StringVar(&body, "body", "", "JSON request body: literal JSON, @file, URL or s3://bucket/key")
	cmd.Flags().StringVar(&form, "form", "", "Form request body as a JSON object: literal JSON, @file, URL or s3://bucket/key")
	return cmd
}
