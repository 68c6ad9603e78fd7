package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/pegkit/pkg/compiler"
	"github.com/Sumatoshi-tech/pegkit/pkg/config"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

// Tool name constants.
const (
	ToolNameCheck  = "peg_check"
	ToolNameParse  = "peg_parse"
	ToolNameFormat = "peg_format"
)

// MaxInputBytes is the default limit for grammar and input text (1 MB).
const MaxInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyGrammar indicates the grammar parameter is empty.
	ErrEmptyGrammar = errors.New("grammar parameter is required and must not be empty")
	// ErrInputTooLarge indicates grammar or input text exceeds the size limit.
	ErrInputTooLarge = errors.New("input exceeds maximum size")
)

// Input types (auto-generate JSON schemas via struct tags).

// CheckInput is the input schema for the peg_check tool.
type CheckInput struct {
	Actions string `json:"actions,omitempty" jsonschema:"action evaluation: registry, expr, chain or none (default: chain)"`
	Grammar string `json:"grammar"           jsonschema:"PEG grammar text"`
	Start   string `json:"start,omitempty"   jsonschema:"start rule (default: Start, else the first rule)"`
}

// ParseInput is the input schema for the peg_parse tool.
type ParseInput struct {
	Actions string `json:"actions,omitempty" jsonschema:"action evaluation: registry, expr, chain or none (default: chain)"`
	Grammar string `json:"grammar"           jsonschema:"PEG grammar text"`
	Input   string `json:"input"             jsonschema:"text to parse"`
	Start   string `json:"start,omitempty"   jsonschema:"start rule (default: Start, else the first rule)"`
}

// FormatInput is the input schema for the peg_format tool.
type FormatInput struct {
	Grammar string `json:"grammar" jsonschema:"PEG grammar text"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// ParseOutput is the result of peg_parse.
type ParseOutput struct {
	Value   any             `json:"value,omitempty"`
	Failure *pegkit.Failure `json:"failure,omitempty"`
}

// FormatOutput is the result of peg_format.
type FormatOutput struct {
	Grammar string `json:"grammar"`
	Changed bool   `json:"changed"`
}

type toolHandler struct {
	loader *pegkit.Loader
	limit  int
}

func (h *toolHandler) check(
	_ context.Context, _ *mcpsdk.CallToolRequest, input CheckInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := h.validate(input.Grammar); err != nil {
		return errorResult(err)
	}

	eval, err := config.Evaluator(input.Actions)
	if err != nil {
		return errorResult(err)
	}

	res := pegkit.Check(input.Grammar, pegkit.WithEvaluator(eval), pegkit.WithStart(input.Start))

	result, output, err := jsonResult(res)
	if result != nil && res.HasErrors() {
		result.IsError = true
	}

	return result, output, err
}

func (h *toolHandler) parse(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ParseInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := h.validate(input.Grammar); err != nil {
		return errorResult(err)
	}

	if len(input.Input) > h.limit {
		return errorResult(fmt.Errorf("%w: input is %d bytes (max %d)", ErrInputTooLarge, len(input.Input), h.limit))
	}

	eval, err := config.Evaluator(input.Actions)
	if err != nil {
		return errorResult(err)
	}

	parser, err := h.loader.Compile(ctx, ToolNameParse, input.Grammar,
		pegkit.WithEvaluator(eval), pegkit.WithStart(input.Start))
	if err != nil {
		return errorResult(err)
	}

	value, err := parser.Parse(ctx, input.Input)
	if err != nil {
		failure := pegkit.Describe(err)

		result, output, encErr := jsonResult(ParseOutput{Failure: &failure})
		if result != nil {
			result.IsError = true
		}

		return result, output, encErr
	}

	return jsonResult(ParseOutput{Value: value})
}

func (h *toolHandler) format(
	_ context.Context, _ *mcpsdk.CallToolRequest, input FormatInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := h.validate(input.Grammar); err != nil {
		return errorResult(err)
	}

	g, err := compiler.Compile(input.Grammar)
	if err != nil {
		return errorResult(err)
	}

	formatted := grammar.Format(g)

	return jsonResult(FormatOutput{Grammar: formatted, Changed: formatted != input.Grammar})
}

func (h *toolHandler) validate(text string) error {
	if text == "" {
		return ErrEmptyGrammar
	}

	if len(text) > h.limit {
		return fmt.Errorf("%w: grammar is %d bytes (max %d)", ErrInputTooLarge, len(text), h.limit)
	}

	return nil
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
