package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/catalogkit/core"
)

func TestExpr_Evaluate(t *testing.T) {
	widget := &core.Record{Name: "Widget", Category: "Tools", Price: 10.0, Rating: 4.5}

	tests := []struct {
		expr string
		want bool
	}{
		{expr: `record.price <= 20.0 && record.rating >= 4.0`, want: true},
		{expr: `record.price > 10.0`, want: false},
		{expr: `record.category == "Tools"`, want: true},
		{expr: `record.name.startsWith("Gad")`, want: false},
		{expr: `query.term == "widg"`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, e.String())

			got, err := e.Evaluate(widget, &core.QueryContext{Term: "widg"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpr_NilQueryContext(t *testing.T) {
	e, err := Compile(`query.term == ""`)
	require.NoError(t, err)
	got, err := e.Evaluate(&core.Record{}, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(`record.price >`)
	assert.ErrorContains(t, err, "compile error")

	_, err = Compile(`"not a bool"`)
	assert.ErrorContains(t, err, "must return bool")
}
