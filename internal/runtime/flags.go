package runtime

import (
	"fmt"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/internal/pagination"
	"github.com/CliForge/pinterest-ads-cli/pkg/output"
)

// Global flag names. Flags bound to configuration keys use the key with '-'
// for '_'.
const (
	flagAccessToken     = "access-token"
	flagClientID        = "client-id"
	flagClientSecret    = "client-secret"
	flagConversionToken = "conversion-token"
	flagAdAccountID     = "ad-account-id"
	flagBaseURL         = "base-url"
	flagCommandTree     = "command-tree"
	flagTimeout         = "timeout"
	flagOutput          = "output"
	flagDebug           = "debug"
	flagPretty          = "pretty"
	flagRaw             = "raw"
	flagFilter          = "filter"
	flagAll             = "all"
	flagMaxPages        = "max-pages"
	flagMaxItems        = "max-items"
)

// addGlobalFlags adds global flags to the root command.
func (rt *Runtime) addGlobalFlags() {
	flags := rt.rootCmd.PersistentFlags()

	flags.String(flagAccessToken, "", "OAuth access token (env PINTEREST_ACCESS_TOKEN)")
	flags.String(flagClientID, "", "App client ID for basic auth (env PINTEREST_CLIENT_ID)")
	flags.String(flagClientSecret, "", "App client secret for basic auth (env PINTEREST_CLIENT_SECRET)")
	flags.String(flagConversionToken, "", "Conversion API token (env PINTEREST_CONVERSION_TOKEN)")
	flags.String(flagAdAccountID, "", "Default ad account ID for {ad_account_id} paths (env PINTEREST_AD_ACCOUNT_ID)")
	flags.String(flagBaseURL, "", "API base URL (env PINTEREST_BASE_URL)")
	flags.String(flagCommandTree, "", "Command tree JSON or YAML file (env PINTEREST_COMMAND_TREE)")
	flags.Int(flagTimeout, 0, "Request timeout in seconds, 0 for none (env PINTEREST_TIMEOUT)")
	flags.StringP(flagOutput, "o", "json", "Output format: json, yaml or table")
	flags.Bool(flagDebug, false, "Enable debug logging on stderr")
	flags.Bool(flagPretty, false, "Pretty-print JSON output")
	flags.Bool(flagRaw, false, "Print the full response instead of its items")
	flags.String(flagFilter, "", "Keep only items matching an expression, e.g. 'status == \"ACTIVE\"'")
	flags.Bool(flagAll, false, "Fetch every page of a paginated operation")
	flags.Int(flagMaxPages, 0, "Stop after this many pages with --all (0 for no limit)")
	flags.Int(flagMaxItems, 0, "Stop after this many items with --all (0 for no limit)")
}

// renderOptions reads the output flags. Global flags are read from the root
// so an operation parameter with the same flag name cannot shadow them.
func (rt *Runtime) renderOptions() output.Options {
	flags := rt.rootCmd.PersistentFlags()
	pretty, _ := flags.GetBool(flagPretty)
	raw, _ := flags.GetBool(flagRaw)
	filter, _ := flags.GetString(flagFilter)

	format := ""
	if rt.cfg != nil {
		format = rt.cfg.Output
	}

	return output.Options{
		Format: format,
		Pretty: pretty,
		Raw:    raw,
		Filter: filter,
	}
}

// paginationOptions reads --all, --max-pages and --max-items.
func (rt *Runtime) paginationOptions() (bool, pagination.Options, error) {
	flags := rt.rootCmd.PersistentFlags()
	all, _ := flags.GetBool(flagAll)
	maxPages, _ := flags.GetInt(flagMaxPages)
	maxItems, _ := flags.GetInt(flagMaxItems)
	if maxPages < 0 || maxItems < 0 {
		return false, pagination.Options{}, fmt.Errorf("%w: --max-pages and --max-items must not be negative", errs.ErrInput)
	}
	return all, pagination.Options{MaxPages: maxPages, MaxItems: maxItems}, nil
}
