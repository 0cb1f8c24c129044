package operator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		raw       string
		wantOp    Operator
		wantValue string
	}{
		{raw: "!foo", wantOp: Ne, wantValue: "foo"},
		{raw: "<=2020-01-01", wantOp: Lte, wantValue: "2020-01-01"},
		{raw: ">=5", wantOp: Gte, wantValue: "5"},
		{raw: "<5", wantOp: Lt, wantValue: "5"},
		{raw: ">5", wantOp: Gt, wantValue: "5"},
		{raw: "%bar%", wantOp: Match, wantValue: "bar"},
		{raw: "bar%", wantOp: Match, wantValue: "bar"},
		{raw: "%bar", wantOp: Match, wantValue: "bar"},
		{raw: "  bar  ", wantOp: Eq, wantValue: "bar"},
		{raw: "!<5", wantOp: Ne, wantValue: "<5"},
		{raw: "", wantOp: Eq, wantValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			op, v := Split(tt.raw)
			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestOperator_Renderings(t *testing.T) {
	tests := []struct {
		op     Operator
		prefix string
		sql    string
	}{
		{Eq, "", "="},
		{Ne, "ne/", "<>"},
		{Lt, "lt/", "<"},
		{Lte, "lte/", "<="},
		{Gt, "gt/", ">"},
		{Gte, "gte/", ">="},
		{Match, "m/", "ILIKE"},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.prefix, tt.op.RemotePrefix())
			assert.Equal(t, tt.sql, tt.op.SQL())
		})
	}
}

func TestOperator_JSON(t *testing.T) {
	var v struct {
		Op Operator `json:"op"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"op":"GTE"}`), &v))
	assert.Equal(t, Gte, v.Op)

	assert.Error(t, json.Unmarshal([]byte(`{"op":"between"}`), &v))

	op, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default, op)
}
