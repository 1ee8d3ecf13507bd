package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/executor"
	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Input flags present on every operation command that accepts them.
const (
	FlagParams = "params"
	FlagBody   = "body"
	FlagForm   = "form"
)

// RequiredExempt lists path parameters that may come from configuration
// instead of a flag.
var RequiredExempt = map[string]bool{
	"ad_account_id": true,
}

// FlagBuilder builds flags for Cobra commands from parameter definitions.
type FlagBuilder struct {
	reserved map[string]bool
}

// NewFlagBuilder creates a new flag builder.
func NewFlagBuilder(reserved []string) *FlagBuilder {
	fb := &FlagBuilder{reserved: make(map[string]bool, len(reserved))}
	for _, name := range reserved {
		fb.reserved[name] = true
	}
	return fb
}

// AddOperationFlags adds --params, --body/--form when the operation has a
// request body, and one flag per parameter.
func (fb *FlagBuilder) AddOperationFlags(cmd *cobra.Command, op *commandtree.Operation) error {
	cmd.Flags().String(FlagParams, "", "Query parameters as a JSON object")
	if op.RequestBody != nil {
		cmd.Flags().String(FlagBody, "", "JSON request body: literal JSON, @file, URL or s3://bucket/key")
		cmd.Flags().String(FlagForm, "", "Form request body as a JSON object: literal JSON, @file, URL or s3://bucket/key")
	}

	for _, p := range op.Params {
		if err := fb.addParameterFlag(cmd, p); err != nil {
			return fmt.Errorf("failed to add flag for parameter %s: %w", p.Name, err)
		}
	}
	return nil
}

// addParameterFlag adds the flag of one parameter and records its mapping in
// the command annotations.
func (fb *FlagBuilder) addParameterFlag(cmd *cobra.Command, p *commandtree.ParamDef) error {
	flagName := p.Flag
	if flagName == "" {
		flagName = toFlagName(p.Name)
	}

	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[fmt.Sprintf("param:%s", flagName)] = p.Name
	cmd.Annotations[fmt.Sprintf("param:%s:in", flagName)] = string(p.In)

	// Persistent root flags and the input flags already carry the value.
	if fb.reserved[flagName] || cmd.Flags().Lookup(flagName) != nil {
		return nil
	}

	description := fmt.Sprintf("%s parameter %s", p.In, p.Name)
	if p.IsDeepObject() {
		description += " (JSON object)"
	}

	if p.IsArray() && !p.IsDeepObject() {
		cmd.Flags().StringArray(flagName, nil, description+" (repeatable)")
	} else {
		cmd.Flags().String(flagName, "", description)
	}
	_ = cmd.Flags().SetAnnotation(flagName, "value-name", []string{p.ValueName()})

	if p.In == commandtree.LocationPath && p.Required && !RequiredExempt[p.Name] {
		if err := cmd.MarkFlagRequired(flagName); err != nil {
			return err
		}
	}
	return nil
}

// GetFlagValue retrieves a flag value as a list of strings.
func GetFlagValue(flags *pflag.FlagSet, name string) ([]string, error) {
	flag := flags.Lookup(name)
	if flag == nil {
		return nil, fmt.Errorf("flag %s not found", name)
	}

	switch flag.Value.Type() {
	case "stringArray":
		return flags.GetStringArray(name)
	case "stringSlice":
		return flags.GetStringSlice(name)
	default:
		return []string{flag.Value.String()}, nil
	}
}

// InputsFromCommand collects the parameter values and body inputs given on
// an operation command. Only flags that were set are included.
func InputsFromCommand(cmd *cobra.Command) (*encoder.Inputs, executor.BodyInputs, error) {
	in := &encoder.Inputs{Values: map[string][]string{}}
	var body executor.BodyInputs

	flags := cmd.Flags()
	if f := flags.Lookup(FlagParams); f != nil && f.Changed {
		in.Params = f.Value.String()
	}
	if f := flags.Lookup(FlagBody); f != nil && f.Changed {
		body.JSON = f.Value.String()
	}
	if f := flags.Lookup(FlagForm); f != nil && f.Changed {
		body.Form = f.Value.String()
	}

	for _, flagName := range ParameterFlags(cmd) {
		f := flags.Lookup(flagName)
		if f == nil || !f.Changed {
			continue
		}
		values, err := GetFlagValue(flags, flagName)
		if err != nil {
			return nil, body, err
		}
		name := cmd.Annotations["param:"+flagName]
		in.Values[name] = append(in.Values[name], values...)
	}

	return in, body, nil
}

// ParameterFlags returns the sorted parameter flag names of a command.
func ParameterFlags(cmd *cobra.Command) []string {
	var names []string
	for key := range cmd.Annotations {
		if !strings.HasPrefix(key, "param:") || strings.HasSuffix(key, ":in") {
			continue
		}
		names = append(names, strings.TrimPrefix(key, "param:"))
	}
	sort.Strings(names)
	return names
}
