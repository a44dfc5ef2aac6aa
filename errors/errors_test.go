package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_UnknownNodeType_Success(t *testing.T) {
	err := UnknownNodeType("gaussian-blur")
	if err.Code != ErrCodeUnknownNodeType {
		t.Errorf("expected UNKNOWN_NODE_TYPE, got %s", err.Code)
	}
	if err.Details["type"] != "gaussian-blur" {
		t.Errorf("expected type=gaussian-blur, got %v", err.Details["type"])
	}
	if !strings.Contains(err.Error(), "gaussian-blur") {
		t.Errorf("expected error string to name the tag, got %q", err.Error())
	}
}

func TestError_InvalidParameter_Success(t *testing.T) {
	err := InvalidParameter("n1", "kernel_size", "must be odd")
	if err.Code != ErrCodeInvalidParameter {
		t.Errorf("expected INVALID_PARAMETER, got %s", err.Code)
	}
	if err.Node != "n1" {
		t.Errorf("expected node n1, got %q", err.Node)
	}
	if err.Details["parameter"] != "kernel_size" {
		t.Errorf("expected parameter=kernel_size, got %v", err.Details["parameter"])
	}
}

func TestError_Cycle_WithPath(t *testing.T) {
	err := Cycle([]string{"a", "b", "a"})
	if err.Code != ErrCodeCycle {
		t.Errorf("expected CYCLE, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "a -> b -> a") {
		t.Errorf("expected cycle path in message, got %q", err.Message)
	}
}

func TestError_Cycle_NoPath(t *testing.T) {
	err := Cycle(nil)
	if err.Code != ErrCodeCycle {
		t.Errorf("expected CYCLE, got %s", err.Code)
	}
	if _, ok := err.Details["path"]; ok {
		t.Error("expected no path detail when path is unknown")
	}
}

func TestError_MissingInput_NamesNodeAndPort(t *testing.T) {
	err := MissingInput("mix-1", "b")
	if err.Node != "mix-1" {
		t.Errorf("expected node mix-1, got %q", err.Node)
	}
	if err.Details["port"] != "b" {
		t.Errorf("expected port=b, got %v", err.Details["port"])
	}
	s := err.Error()
	if !strings.Contains(s, "mix-1") || !strings.Contains(s, `"b"`) {
		t.Errorf("expected error string to name node and port, got %q", s)
	}
}

func TestError_Compute_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("decode png: unexpected EOF")
	err := Compute("input-1", cause)
	if err.Code != ErrCodeNodeCompute {
		t.Errorf("expected NODE_COMPUTE, got %s", err.Code)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the compute cause")
	}
	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NodeNotFound("n9").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestError_WithDetails_Merge(t *testing.T) {
	err := PortOccupied("n1", "in").WithDetails(map[string]any{
		"extra": "info",
	})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["port"] != "in" {
		t.Error("expected original details to be preserved")
	}

	err.WithDetails(map[string]any{"another": "detail"})
	if err.Details["another"] != "detail" {
		t.Error("expected another=detail to be merged")
	}
	if err.Details["extra"] != "info" {
		t.Error("expected extra=info to be preserved after second merge")
	}
}

func TestError_WithDetail_NilMap(t *testing.T) {
	err := &Error{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestError_WithNode_Attribution(t *testing.T) {
	err := InvalidWorkflow("duplicate node id").WithNode("n3")
	if err.Node != "n3" {
		t.Errorf("expected node n3, got %q", err.Node)
	}
	if !strings.Contains(err.Error(), "node n3") {
		t.Errorf("expected error string to name node, got %q", err.Error())
	}
}

func TestError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code ErrorCode
		node string
	}{
		{"UnknownNodeType", UnknownNodeType("x"), ErrCodeUnknownNodeType, ""},
		{"InvalidParameter", InvalidParameter("n1", "p", "bad"), ErrCodeInvalidParameter, "n1"},
		{"PortMismatch", PortMismatch("n2", "out", "not an input"), ErrCodePortMismatch, "n2"},
		{"PortOccupied", PortOccupied("n3", "in"), ErrCodePortOccupied, "n3"},
		{"Cycle", Cycle([]string{"a", "a"}), ErrCodeCycle, ""},
		{"NodeNotFound", NodeNotFound("n4"), ErrCodeNodeNotFound, "n4"},
		{"EdgeNotFound", EdgeNotFound("a", "out", "b", "in"), ErrCodeEdgeNotFound, ""},
		{"MissingInput", MissingInput("n5", "in"), ErrCodeMissingInput, "n5"},
		{"Compute", Compute("n6", nil), ErrCodeNodeCompute, "n6"},
		{"InvalidWorkflow", InvalidWorkflow("no nodes"), ErrCodeInvalidWorkflow, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Node != tc.node {
				t.Errorf("expected node %q, got %q", tc.node, tc.err.Node)
			}
		})
	}
}

func TestError_IsEngineError_Success(t *testing.T) {
	engErr := NodeNotFound("x")
	if !IsEngineError(engErr) {
		t.Error("expected IsEngineError to return true for Error")
	}

	wrapped := fmt.Errorf("wrapped: %w", engErr)
	if !IsEngineError(wrapped) {
		t.Error("expected IsEngineError to return true for wrapped Error")
	}

	plain := fmt.Errorf("plain error")
	if IsEngineError(plain) {
		t.Error("expected IsEngineError to return false for plain error")
	}
}

func TestError_AsEngineError_Success(t *testing.T) {
	engErr := MissingInput("n1", "in")
	wrapped := fmt.Errorf("wrap: %w", engErr)

	got, ok := AsEngineError(wrapped)
	if !ok {
		t.Fatal("expected AsEngineError to succeed for wrapped Error")
	}
	if got.Code != ErrCodeMissingInput {
		t.Errorf("expected MISSING_INPUT, got %s", got.Code)
	}

	_, ok = AsEngineError(fmt.Errorf("not an engine error"))
	if ok {
		t.Error("expected AsEngineError to return false for non-engine error")
	}
}

func TestError_CodeOf_Table(t *testing.T) {
	if got := CodeOf(Cycle(nil)); got != ErrCodeCycle {
		t.Errorf("expected CYCLE, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("outer: %w", PortOccupied("n", "in"))); got != ErrCodePortOccupied {
		t.Errorf("expected PORT_OCCUPIED through wrap, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %s", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("expected empty code for nil error, got %s", got)
	}
}

func TestError_HasCode_Success(t *testing.T) {
	err := Compute("n1", fmt.Errorf("boom"))
	if !HasCode(err, ErrCodeNodeCompute) {
		t.Error("expected HasCode NODE_COMPUTE to be true")
	}
	if HasCode(err, ErrCodeCycle) {
		t.Error("expected HasCode CYCLE to be false")
	}
}

func TestError_ImplementsErrorInterface(t *testing.T) {
	var err error = NodeNotFound("n1")
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}

	var engErr *Error
	if !stderrors.As(err, &engErr) {
		t.Error("stderrors.As should work with Error")
	}
}
