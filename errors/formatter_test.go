package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beanload/analyzer"
	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/inventory"
	"github.com/robinvdvleuten/beanload/ledger"
	"github.com/robinvdvleuten/beanload/parser"
	"github.com/robinvdvleuten/beanload/validation"
)

const ledgerSource = `2014-01-01 open Assets:Cash
2014-01-01 open assets:cash
2014-02-01 * "Coffee"
  Assets:Cash  -3 USD
  Expenses:Coffee
`

func sources(files map[string]string) SourceFunc {
	return func(filename string) ([]byte, error) {
		if content, ok := files[filename]; ok {
			return []byte(content), nil
		}
		return nil, fs.ErrNotExist
	}
}

func TestTextFormatterWithoutSource(t *testing.T) {
	tf := NewTextFormatter()

	err := &parser.ParseError{Pos: ast.Position{Filename: "main.beancount", Line: 2, Column: 12}, Message: "unexpected token"}
	assert.Equal(t, "main.beancount:2: unexpected token", tf.Format(err))

	assert.Equal(t, "boom", tf.Format(stderrors.New("boom")))
	assert.Equal(t, "", tf.Format(nil))
}

func TestTextFormatterParseErrorContext(t *testing.T) {
	tf := NewTextFormatter(WithSource(sources(map[string]string{"main.beancount": ledgerSource})))

	err := &parser.ParseError{Pos: ast.Position{Filename: "main.beancount", Line: 2, Column: 17}, Message: "invalid account"}
	assert.Equal(t, "main.beancount:2: invalid account\n"+
		"\n"+
		"   2014-01-01 open Assets:Cash\n"+
		"   2014-01-01 open assets:cash\n"+
		"                   ^\n"+
		"   2014-02-01 * \"Coffee\"", tf.Format(err))
}

func TestTextFormatterUnwrapsLoadErrors(t *testing.T) {
	tf := NewTextFormatter(WithSource(sources(map[string]string{"main.beancount": ledgerSource})))

	failed := &validation.FailedError{First: ledger.Diagnostic{
		Level:          ledger.Error,
		Message:        "Invalid account name: assets:cash",
		SourceFilename: "main.beancount",
		SourceLine:     1,
	}}
	err := fmt.Errorf("load: %w", failed)

	assert.Equal(t, "load: main.beancount:1: Invalid account name: assets:cash\n"+
		"\n"+
		"   2014-01-01 open Assets:Cash\n"+
		"   2014-01-01 open assets:cash", tf.Format(err))
}

func TestTextFormatterMissingSource(t *testing.T) {
	tf := NewTextFormatter(WithSource(sources(nil)))

	err := &analyzer.IncludeCycleError{
		Pos:   ast.Position{Filename: "b.beancount", Line: 2},
		Chain: []string{"main.beancount", "b.beancount", "main.beancount"},
	}
	assert.Equal(t, err.Error(), tf.Format(err))
}

func TestFormatDiagnostics(t *testing.T) {
	diags := []ledger.Diagnostic{
		{Level: ledger.Warning, Message: "poptag with empty stack", SourceFilename: "main.beancount", SourceLine: 3},
		{Level: ledger.Info, Message: "option: title"},
	}

	assert.Equal(t, "main.beancount:3: WARNING: poptag with empty stack\nINFO: option: title",
		NewTextFormatter().FormatDiagnostics(diags))

	tf := NewTextFormatter(WithSource(sources(map[string]string{"main.beancount": ledgerSource})))
	assert.Equal(t, "main.beancount:3: WARNING: poptag with empty stack\n"+
		"\n"+
		"   2014-01-01 open Assets:Cash\n"+
		"   2014-01-01 open assets:cash\n"+
		"   2014-02-01 * \"Coffee\"\n"+
		"     Assets:Cash  -3 USD\n"+
		"\n"+
		"INFO: option: title", tf.FormatDiagnostics(diags))
}

func TestJSONFormatter(t *testing.T) {
	jf := NewJSONFormatter()

	tests := []struct {
		name string
		err  error
		want ErrorJSON
	}{
		{
			name: "parse",
			err:  &parser.ParseError{Pos: ast.Position{Filename: "main.beancount", Line: 2, Column: 3}, Message: "bad"},
			want: ErrorJSON{
				Type:     "parse",
				Message:  "main.beancount:2: bad",
				Position: &PositionJSON{Filename: "main.beancount", Line: 2, Column: 3},
			},
		},
		{
			name: "include cycle",
			err: &analyzer.IncludeCycleError{
				Pos:   ast.Position{Filename: "a.beancount", Line: 1},
				Chain: []string{"a.beancount", "a.beancount"},
			},
			want: ErrorJSON{
				Type:     "include_cycle",
				Message:  "a.beancount:1: Recursive include detected: a.beancount -> a.beancount",
				Position: &PositionJSON{Filename: "a.beancount", Line: 1},
				Details:  map[string]string{"chain": "a.beancount -> a.beancount"},
			},
		},
		{
			name: "validation",
			err: &validation.FailedError{First: ledger.Diagnostic{
				Level: ledger.Error, Message: "Duplicate open directive for Assets:Cash", SourceFilename: "main.beancount", SourceLine: 2,
			}},
			want: ErrorJSON{
				Type:     "validation",
				Message:  "main.beancount:2: Duplicate open directive for Assets:Cash",
				Position: &PositionJSON{Filename: "main.beancount", Line: 2},
			},
		},
		{
			name: "booking",
			err: &inventory.BookingError{
				Account: "Assets:Brokerage", Currency: "HOOL", EntryID: 4, Err: inventory.ErrStrictLotNotFound,
			},
			want: ErrorJSON{
				Type:    "booking",
				Message: "booking_method STRICT could not find lot for account Assets:Brokerage (HOOL)",
				Details: map[string]string{"account": "Assets:Brokerage", "currency": "HOOL", "entry_id": "4"},
			},
		},
		{
			name: "plain",
			err:  fs.ErrNotExist,
			want: ErrorJSON{Type: "error", Message: "file does not exist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jf.ToJSON(tt.err))

			var decoded ErrorJSON
			assert.NoError(t, json.Unmarshal([]byte(jf.Format(tt.err)), &decoded))
			assert.Equal(t, tt.want, decoded)
		})
	}
}

func TestJSONReport(t *testing.T) {
	jf := NewJSONFormatter()

	assert.Equal(t, "[]", jf.FormatDiagnostics(nil))

	out := jf.FormatReport([]ledger.Diagnostic{
		{Level: ledger.Warning, Message: "Include pattern matched no files: none/*.beancount", SourceFilename: "main.beancount", SourceLine: 1},
	}, nil)
	assert.Equal(t, `{
  "diagnostics": [
    {
      "level": "WARNING",
      "message": "Include pattern matched no files: none/*.beancount",
      "filename": "main.beancount",
      "line": 1
    }
  ]
}`, out)

	var report struct {
		Diagnostics []map[string]any `json:"diagnostics"`
		Error       *ErrorJSON       `json:"error"`
	}
	assert.NoError(t, json.Unmarshal([]byte(jf.FormatReport(nil, stderrors.New("boom"))), &report))
	assert.Equal(t, 0, len(report.Diagnostics))
	assert.Equal(t, &ErrorJSON{Type: "error", Message: "boom"}, report.Error)
}
