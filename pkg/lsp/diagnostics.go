package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/analysis"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
	"github.com/Sumatoshi-tech/pegkit/pkg/safeconv"
	"github.com/Sumatoshi-tech/pegkit/pkg/textutil"
)

const diagnosticSource = "pegkit"

// Diagnose checks text and converts the problems found to LSP diagnostics.
// The grammar is nil when text does not compile.
func Diagnose(text string, eval action.Evaluator) (*grammar.Grammar, []protocol.Diagnostic) {
	res := pegkit.Check(text, pegkit.WithEvaluator(eval))
	diags := make([]protocol.Diagnostic, 0, len(res.Diagnostics))

	for _, d := range res.Diagnostics {
		severity := protocol.DiagnosticSeverityWarning
		if d.Severity == analysis.SeverityError {
			severity = protocol.DiagnosticSeverityError
		}

		pd := diagnostic(text, d.Span, severity, d.Message)
		if d.Kind == analysis.KindUnreachable {
			pd.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
		}

		code := protocol.IntegerOrString{Value: d.Kind}
		pd.Code = &code

		diags = append(diags, pd)
	}

	return res.Grammar, diags
}

func diagnostic(text string, span grammar.Span, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	source := diagnosticSource

	return protocol.Diagnostic{
		Range:    toRange(text, span),
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

func toRange(text string, span grammar.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(text, span.Start),
		End:   toPosition(text, max(span.End, span.Start)),
	}
}

func toPosition(text string, offset int) protocol.Position {
	line, column := textutil.Position(text, offset)

	return protocol.Position{
		Line:      safeconv.ClampUint32(line),
		Character: safeconv.ClampUint32(column),
	}
}

func toOffset(text string, pos protocol.Position) int {
	return textutil.Offset(text, safeconv.Uint32ToInt(pos.Line), safeconv.Uint32ToInt(pos.Character))
}
