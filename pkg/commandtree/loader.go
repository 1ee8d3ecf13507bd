package commandtree

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/command_tree.json
var embeddedTree []byte

// Default returns the command tree embedded in the binary.
func Default() (*CommandTree, error) {
	return Parse(embeddedTree)
}

// LoadFile loads and validates a command tree from a JSON or YAML file.
func LoadFile(path string) (*CommandTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read command tree: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a command tree. JSON is detected by a leading
// '{'; anything else is decoded as YAML.
func Parse(data []byte) (*CommandTree, error) {
	var tree CommandTree

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &tree); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCommandTree, err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &tree); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCommandTree, err)
		}
	}

	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCommandTree, err)
	}

	tree.buildIndex()
	return &tree, nil
}

func (t *CommandTree) buildIndex() {
	t.index = make(map[string]map[string]*Operation, len(t.Resources))
	for _, res := range t.Resources {
		ops := make(map[string]*Operation, len(res.Operations))
		for _, op := range res.Operations {
			ops[op.Name] = op
		}
		t.index[res.Name] = ops
	}
}

// Find returns the operation op of resource res.
func (t *CommandTree) Find(res, op string) (*Operation, error) {
	if t.index == nil {
		t.buildIndex()
	}
	if found, ok := t.index[res][op]; ok {
		return found, nil
	}
	return nil, fmt.Errorf("%w: %s %s", errs.ErrUnknownOperation, res, op)
}

// Resource returns the resource named name.
func (t *CommandTree) Resource(name string) (*Resource, bool) {
	for _, res := range t.Resources {
		if res.Name == name {
			return res, true
		}
	}
	return nil, false
}
