package editor

import (
	"fmt"
	"strconv"
	"strings"

	"haven/internal/models"
)

// InputKind identifies what a command needs from the caller before it can
// complete.
type InputKind string

const (
	InputURL       InputKind = "url"
	InputColor     InputKind = "color"
	InputTableSize InputKind = "table_size"
)

// InputRequest is returned by Exec when a command needs a value the caller
// did not supply. The caller answers with Provide, or abandons the command by
// issuing another one.
type InputRequest struct {
	Kind    InputKind `json:"kind"`
	Prompt  string    `json:"prompt"`
	Default string    `json:"default,omitempty"`
}

type pendingInput struct {
	req   InputRequest
	apply func(value string) error
}

func (e *Editor) requestInput(kind InputKind, prompt, def string, apply func(string) error) *InputRequest {
	e.pending = &pendingInput{
		req:   InputRequest{Kind: kind, Prompt: prompt, Default: def},
		apply: apply,
	}
	req := e.pending.req
	return &req
}

// Provide completes the pending input request with value. An empty value
// cancels the command without error. Calling Provide with no request pending
// is a validation error.
func (e *Editor) Provide(value string) error {
	if e.pending == nil {
		return models.NewValidationError("no input requested")
	}
	p := e.pending
	e.pending = nil
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return p.apply(value)
}

// PendingInput returns the outstanding request, if any.
func (e *Editor) PendingInput() *InputRequest {
	if e.pending == nil {
		return nil
	}
	req := e.pending.req
	return &req
}

const (
	defaultTableRows = 3
	defaultTableCols = 3
	maxTableDim      = 20
)

// parseTableSize parses a "RxC" size string. Malformed or out-of-range input
// falls back to the default 3x3 grid rather than failing the command.
func parseTableSize(v string) (rows, cols int) {
	rows, cols = defaultTableRows, defaultTableCols
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(v)), "x", 2)
	if len(parts) != 2 {
		return rows, cols
	}
	r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	c, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || r < 1 || c < 1 || r > maxTableDim || c > maxTableDim {
		return defaultTableRows, defaultTableCols
	}
	return r, c
}

func tableSizePrompt() string {
	return fmt.Sprintf("Table size as RxC (default %dx%d)", defaultTableRows, defaultTableCols)
}
