package main

import (
	"encoding/json"
	"errors"

	"github.com/nickyhof/sqlfp"
)

// errorResponse is returned in place of a result. Kind is "configuration",
// "syntax" or "empty" for the fingerprinting errors and "internal" otherwise.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type canonicalResponse struct {
	Canonical string `json:"canonical"`
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, sqlfp.ErrConfiguration):
		return "configuration"
	case errors.Is(err, sqlfp.ErrSyntax):
		return "syntax"
	case errors.Is(err, sqlfp.ErrEmptyInput):
		return "empty"
	default:
		return "internal"
	}
}

func marshal(v any, err error) string {
	if err != nil {
		v = errorResponse{Error: err.Error(), Kind: errorKind(err)}
	}
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorResponse{Error: err.Error(), Kind: "internal"})
	}
	return string(data)
}

func options(dialect, placeholder string) []sqlfp.Option {
	return []sqlfp.Option{sqlfp.WithDialect(dialect), sqlfp.WithPlaceholder(placeholder)}
}

func normalizeJSON(text, dialect, placeholder string) string {
	return marshal(sqlfp.Normalize(text, options(dialect, placeholder)...))
}

func canonicalizeJSON(text, dialect string) string {
	canonical, err := sqlfp.Canonicalize(text, sqlfp.WithDialect(dialect))
	return marshal(canonicalResponse{Canonical: canonical}, err)
}
