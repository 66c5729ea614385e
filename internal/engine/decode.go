package engine

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

// Limits bounds what Decode accepts. Zero values disable a check.
type Limits struct {
	MaxDepth            int
	MaxBytes            int64
	RejectDuplicateKeys bool
}

// DecodeError reports why a payload was rejected. Path is the JSON Pointer of
// the offending location ("/" when unknown).
type DecodeError struct {
	Code    string
	Path    string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Decode parses a single JSON value from data using go-json's token stream.
// Objects become map[string]any, arrays []any and numbers float64.
func Decode(data []byte, lim Limits) (any, error) {
	if lim.MaxBytes > 0 && int64(len(data)) > lim.MaxBytes {
		return nil, &DecodeError{Code: "truncated", Path: "/", Message: "max bytes exceeded"}
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	d := &decoder{dec: dec, lim: lim}
	tok, err := d.next("")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DecodeError{Code: "parse_error", Path: "/", Message: "empty input"}
		}
		return nil, err
	}
	v, err := d.value(tok, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Code: "parse_error", Path: "/", Message: "trailing data after document", Cause: err}
	}
	return v, nil
}

type decoder struct {
	dec *j.Decoder
	lim Limits
}

func (d *decoder) next(path string) (j.Token, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "malformed JSON", Cause: err}
	}
	return tok, nil
}

func (d *decoder) value(tok j.Token, path string, depth int) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return d.object(path, depth+1)
		case '[':
			return d.array(path, depth+1)
		}
		return nil, &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "unexpected delimiter " + v.String()}
	case j.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "invalid number", Cause: err}
		}
		return f, nil
	case float64, string, bool, nil:
		return v, nil
	default:
		return nil, &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "unexpected token"}
	}
}

func (d *decoder) object(path string, depth int) (any, error) {
	if err := d.checkDepth(path, depth); err != nil {
		return nil, err
	}
	m := make(map[string]any)
	for {
		tok, err := d.next(path)
		if err != nil {
			return nil, unexpectedEOF(err, path)
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "expected object key"}
		}
		kp := path + "/" + Escape(key)
		if _, dup := m[key]; dup && d.lim.RejectDuplicateKeys {
			return nil, &DecodeError{Code: "duplicate_key", Path: kp, Message: "key '" + key + "' duplicated"}
		}
		vt, err := d.next(kp)
		if err != nil {
			return nil, unexpectedEOF(err, kp)
		}
		v, err := d.value(vt, kp, depth)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *decoder) array(path string, depth int) (any, error) {
	if err := d.checkDepth(path, depth); err != nil {
		return nil, err
	}
	arr := []any{}
	for {
		ip := path + "/" + strconv.Itoa(len(arr))
		tok, err := d.next(ip)
		if err != nil {
			return nil, unexpectedEOF(err, path)
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, ip, depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func (d *decoder) checkDepth(path string, depth int) error {
	if d.lim.MaxDepth > 0 && depth > d.lim.MaxDepth {
		return &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "max depth exceeded"}
	}
	return nil
}

func unexpectedEOF(err error, path string) error {
	if errors.Is(err, io.EOF) {
		return &DecodeError{Code: "parse_error", Path: pointerOrRoot(path), Message: "unexpected end of input", Cause: io.ErrUnexpectedEOF}
	}
	return err
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
