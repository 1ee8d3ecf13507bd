package executor

import (
	"fmt"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
)

// Request body content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// BodyKind distinguishes JSON and form bodies.
type BodyKind string

const (
	BodyJSON BodyKind = "json"
	BodyForm BodyKind = "form"
)

// Body is a request payload.
type Body struct {
	Kind BodyKind
	JSON any
	Form encoder.Query
}

// JSONBody returns a JSON body.
func JSONBody(v any) *Body {
	return &Body{Kind: BodyJSON, JSON: v}
}

// FormBody returns a form-urlencoded body.
func FormBody(fields encoder.Query) *Body {
	return &Body{Kind: BodyForm, Form: fields}
}

// Encode serializes the body and returns its content type.
func (b *Body) Encode() ([]byte, string, error) {
	switch b.Kind {
	case BodyJSON:
		s, err := encoder.CompactJSON(b.JSON)
		if err != nil {
			return nil, "", err
		}
		return []byte(s), ContentTypeJSON, nil
	case BodyForm:
		return []byte(b.Form.Encode()), ContentTypeForm, nil
	default:
		return nil, "", fmt.Errorf("%w: unknown body kind %q", errs.ErrInput, b.Kind)
	}
}

// ReadJSONFunc turns a --body or --form value, literal JSON or a source
// reference, into a JSON value.
type ReadJSONFunc func(raw string) (any, error)

// BodyInputs are the raw --body and --form values. Empty means not given.
type BodyInputs struct {
	JSON string
	Form string
}

func (in BodyInputs) empty() bool {
	return in.JSON == "" && in.Form == ""
}

// PrepareBody builds the request body for op. JSON is preferred when the
// operation accepts it, then form encoding.
func PrepareBody(op *commandtree.Operation, in BodyInputs, read ReadJSONFunc) (*Body, error) {
	rb := op.RequestBody
	if rb == nil {
		if !in.empty() {
			return nil, errs.ErrUnexpectedBody
		}
		return nil, nil
	}

	switch {
	case rb.AcceptsContentType(ContentTypeJSON):
		if in.JSON == "" {
			if rb.Required {
				return nil, fmt.Errorf("%w: --body", errs.ErrMissingBody)
			}
			return nil, nil
		}
		return readJSONBody(in.JSON, read)

	case rb.AcceptsContentType(ContentTypeForm):
		if in.Form == "" {
			if rb.Required {
				return nil, fmt.Errorf("%w: --form", errs.ErrMissingBody)
			}
			return nil, nil
		}
		return readFormBody(in.Form, read)

	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedContentType, strings.Join(rb.ContentTypes, ", "))
	}
}

// PrepareRawBody builds a body without an operation definition: --body wins
// over --form.
func PrepareRawBody(in BodyInputs, read ReadJSONFunc) (*Body, error) {
	switch {
	case in.JSON != "":
		return readJSONBody(in.JSON, read)
	case in.Form != "":
		return readFormBody(in.Form, read)
	default:
		return nil, nil
	}
}

func readJSONBody(raw string, read ReadJSONFunc) (*Body, error) {
	value, err := read(raw)
	if err != nil {
		return nil, fmt.Errorf("--body: %w", err)
	}
	return JSONBody(value), nil
}

func readFormBody(raw string, read ReadJSONFunc) (*Body, error) {
	value, err := read(raw)
	if err != nil {
		return nil, fmt.Errorf("--form: %w", err)
	}
	fields, err := encoder.FormPairs(value)
	if err != nil {
		return nil, err
	}
	return FormBody(fields), nil
}
