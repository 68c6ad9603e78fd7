package pegkit

import (
	"errors"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// Failure is the serializable form of a parse error.
type Failure struct {
	Error    string   `json:"error"              yaml:"error"`
	Offset   int      `json:"offset"             yaml:"offset"`
	Line     int      `json:"line,omitempty"     yaml:"line,omitempty"`
	Column   int      `json:"column,omitempty"   yaml:"column,omitempty"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Found    string   `json:"found,omitempty"    yaml:"found,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"  yaml:"excerpt,omitempty"`
}

// Describe converts a Parse error to a Failure. Position fields are filled
// for *peg.ParseError and the offset alone for *peg.ActionError.
func Describe(err error) Failure {
	f := Failure{Error: err.Error()}

	var (
		perr *peg.ParseError
		aerr *peg.ActionError
	)

	switch {
	case errors.As(err, &perr):
		f.Offset = perr.Offset
		f.Line = perr.Line
		f.Column = perr.Column
		f.Expected = perr.Expected
		f.Found = perr.Found
		f.Excerpt = perr.Excerpt
	case errors.As(err, &aerr):
		f.Offset = aerr.Offset
	}

	return f
}
