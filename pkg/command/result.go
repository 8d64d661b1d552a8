package command

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ResultType identifies what a Result holds.
type ResultType string

const (
	TypeEmpty  ResultType = "empty"
	TypeInt    ResultType = "int"
	TypeFloat  ResultType = "float"
	TypeString ResultType = "string"
	TypeList   ResultType = "list"
	TypeBytes  ResultType = "bytes"
)

// Result is the value a command returns.
type Result struct {
	Type        ResultType
	Int         int64
	Float       float64
	Str         string
	List        []Result
	Bytes       []byte
	ContentType string
}

// Empty is the result of commands that return nothing.
var Empty = Result{Type: TypeEmpty}

// Int returns an integer result.
func Int(v int64) Result { return Result{Type: TypeInt, Int: v} }

// Float returns a floating point result.
func Float(v float64) Result { return Result{Type: TypeFloat, Float: v} }

// Text returns a string result.
func Text(s string) Result { return Result{Type: TypeString, Str: s} }

// List returns a list result.
func List(items ...Result) Result { return Result{Type: TypeList, List: items} }

// Bytes returns a binary result with its MIME type.
func Bytes(data []byte, contentType string) Result {
	return Result{Type: TypeBytes, Bytes: data, ContentType: contentType}
}

// IsEmpty reports whether r carries no value.
func (r Result) IsEmpty() bool { return r.Type == "" || r.Type == TypeEmpty }

// String returns the text form of r. List elements that contain spaces
// are quoted so the text splits back into the same elements.
func (r Result) String() string {
	switch r.Type {
	case TypeInt:
		return strconv.FormatInt(r.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(r.Float, 'g', -1, 64)
	case TypeString:
		return r.Str
	case TypeList:
		parts := make([]string, len(r.List))
		for i, item := range r.List {
			parts[i] = quote(item.String())
		}
		return strings.Join(parts, " ")
	case TypeBytes:
		return string(r.Bytes)
	}
	return ""
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\n\"'\\") {
		return s
	}
	return strconv.Quote(s)
}

type resultJSON struct {
	Type        ResultType `json:"type"`
	Value       any        `json:"value,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
}

// MarshalJSON encodes r as {"type": ..., "value": ...}. Bytes are base64.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Type: r.Type}
	switch r.Type {
	case TypeInt:
		out.Value = r.Int
	case TypeFloat:
		out.Value = r.Float
	case TypeString:
		out.Value = r.Str
	case TypeList:
		list := r.List
		if list == nil {
			list = []Result{}
		}
		out.Value = list
	case TypeBytes:
		out.Value = r.Bytes
		out.ContentType = r.ContentType
	default:
		out.Type = TypeEmpty
	}
	return json.Marshal(out)
}
