package ast

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-1-5", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, input := range []string{"2023-02-29", "2024-13-01", "2024-00-10", "24-01-01", "2024-001-01", "2024/01/01", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input)
			assert.Error(t, err)
		})
	}
}

func TestStatementsAreSealed(t *testing.T) {
	stmts := []Statement{
		&Include{Pos: Position{Line: 1}},
		&GlobalDirective{Pos: Position{Line: 2}},
		&Open{Header: Header{Pos: Position{Line: 3}}},
		&Transaction{Header: Header{Pos: Position{Line: 4}}},
	}

	for i, stmt := range stmts {
		assert.Equal(t, i+1, stmt.Position().Line)
	}

	var d Directive = &Generic{Header: Header{Type: "commodity"}}
	assert.Equal(t, "commodity", d.DirectiveHeader().Type)
}

func TestGlobalDirectiveArg(t *testing.T) {
	g := &GlobalDirective{Kind: "option", Args: []string{"title", "Ledger"}}
	assert.Equal(t, "title", g.Arg(0))
	assert.Equal(t, "Ledger", g.Arg(1))
	assert.Equal(t, "", g.Arg(2))
	assert.Equal(t, "", g.Arg(-1))
}

func TestPosition(t *testing.T) {
	pos := Position{Filename: "main.beancount", Line: 3, Column: 1}
	assert.Equal(t, "main.beancount:3:1", pos.String())
	assert.Equal(t, "3:1", Position{Line: 3, Column: 1}.String())
	assert.True(t, Position{}.IsZero())
	assert.False(t, pos.IsZero())
}

func TestCostIsEmpty(t *testing.T) {
	var nilCost *Cost
	assert.False(t, nilCost.IsEmpty())
	assert.True(t, (&Cost{}).IsEmpty())
	assert.False(t, (&Cost{Currency: "USD"}).IsEmpty())
}
