package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandleToolEvaluateRoundTrip verifies a bind followed by an evaluate
// call round-trips through the JSON tool envelope, the shape an agent
// framework drives this endpoint with.
func TestHandleToolEvaluateRoundTrip(t *testing.T) {
	s := newServer()

	bindParamsJSON, err := json.Marshal(bindParams{Variable: "x", Value: 3})
	require.NoError(t, err)
	resp := s.handleTool(toolRequest{Tool: "bind", Params: bindParamsJSON})
	assert.Empty(t, resp.Error)

	evalParamsJSON, err := json.Marshal(exprParams{Expr: "x*x + 1"})
	require.NoError(t, err)
	resp = s.handleTool(toolRequest{Tool: "evaluate", Params: evalParamsJSON})
	require.Empty(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 10.0, result["value"])
}

// TestHandleToolGuaranteed verifies the guaranteed tool resolves an
// attribute name through attrByName and evaluates it on a parsed
// expression.
func TestHandleToolGuaranteed(t *testing.T) {
	s := newServer()

	params, err := json.Marshal(guaranteedParams{Expr: "abs(-4)", Attribute: "nonnegative"})
	require.NoError(t, err)
	resp := s.handleTool(toolRequest{Tool: "guaranteed", Params: params})
	require.Empty(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, result["guaranteed"])
}

// TestHandleToolUnknownTool verifies an unrecognized tool name reports an
// error response rather than panicking.
func TestHandleToolUnknownTool(t *testing.T) {
	s := newServer()
	resp := s.handleTool(toolRequest{Tool: "nonexistent"})
	assert.Contains(t, resp.Error, "unknown tool")
}

// TestParseExprUnaryFunctionAndBinding verifies the recursive-descent parser
// handles a function call inside a product and auto-registers unbound
// variable names at zero.
func TestParseExprUnaryFunctionAndBinding(t *testing.T) {
	s := newServer()
	e, err := parseExpr(s, "sin(y)*2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, e.Evaluate()) // y auto-registers at 0, sin(0)=0.
}

// TestHandleToolDerive verifies the derive tool returns both the rendered
// derivative and its numeric value at the variable's current binding.
func TestHandleToolDerive(t *testing.T) {
	s := newServer()

	bindJSON, err := json.Marshal(bindParams{Variable: "x", Value: 3})
	require.NoError(t, err)
	require.Empty(t, s.handleTool(toolRequest{Tool: "bind", Params: bindJSON}).Error)

	params, err := json.Marshal(deriveParams{Expr: "x*x", Variable: "x"})
	require.NoError(t, err)
	resp := s.handleTool(toolRequest{Tool: "derive", Params: params})
	require.Empty(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 6.0, result["value"])
}

// TestHandleToolAtomicAssignSwapsSimultaneously verifies the atomicAssign
// tool applies every update under the pre-update values, the same
// simultaneity guarantee symcore.AtomicAssign provides directly.
func TestHandleToolAtomicAssignSwapsSimultaneously(t *testing.T) {
	s := newServer()

	for _, b := range []bindParams{{Variable: "a", Value: 1}, {Variable: "b", Value: 2}} {
		bindJSON, err := json.Marshal(b)
		require.NoError(t, err)
		require.Empty(t, s.handleTool(toolRequest{Tool: "bind", Params: bindJSON}).Error)
	}

	params, err := json.Marshal(atomicAssignParams{Updates: []assignment{
		{Variable: "a", Expr: "b"},
		{Variable: "b", Expr: "a"},
	}})
	require.NoError(t, err)
	resp := s.handleTool(toolRequest{Tool: "atomicAssign", Params: params})
	require.Empty(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2.0, result["a"])
	assert.Equal(t, 1.0, result["b"])
}
