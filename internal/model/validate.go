package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRequest is matched by every *ValidationError via errors.Is.
var ErrInvalidRequest = errors.New("invalid request")

// ValidationError names the offending field and why it was rejected.
type ValidationError struct {
	Field  string // e.g. "items[2].width", "bin.maximumWeight"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseRequest decodes a JSON request, validates it and applies defaults.
// Absent item weight and cost default to 0; an absent bin maximumWeight
// defaults to MaxSafeInteger.
func ParseRequest(data []byte) (Request, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return Request{}, invalid("request", "must be an object")
	}

	rawItems, ok := top["items"]
	if !ok || isNull(rawItems) {
		return Request{}, invalid("items", "is required")
	}
	var itemList []json.RawMessage
	if err := json.Unmarshal(rawItems, &itemList); err != nil {
		return Request{}, invalid("items", "must be a list")
	}

	req := Request{Items: make([]Item, 0, len(itemList))}
	for i, raw := range itemList {
		item, err := parseItem(i, raw)
		if err != nil {
			return Request{}, err
		}
		req.Items = append(req.Items, item)
	}

	rawBin, ok := top["bin"]
	if !ok || isNull(rawBin) {
		return Request{}, invalid("bin", "is required")
	}
	bin, err := parseBin(rawBin)
	if err != nil {
		return Request{}, err
	}
	req.Bin = bin
	return req, nil
}

func parseItem(idx int, raw json.RawMessage) (Item, error) {
	prefix := fmt.Sprintf("items[%d]", idx)
	fields, err := parseObject(raw)
	if err != nil {
		return Item{}, invalid(prefix, "must be an object")
	}

	var item Item
	if item.Width, err = requiredInt(fields, prefix, "width"); err != nil {
		return Item{}, err
	}
	if item.Length, err = requiredInt(fields, prefix, "length"); err != nil {
		return Item{}, err
	}
	if item.Weight, err = optionalInt(fields, prefix, "weight", 0); err != nil {
		return Item{}, err
	}
	if item.Cost, err = optionalInt(fields, prefix, "cost", 0); err != nil {
		return Item{}, err
	}
	item.Label = informational(fields["label"])
	item.ID = informational(fields["id"])
	return item, nil
}

// informational reads a label or ID. These never fail validation: a
// non-string value keeps its JSON text and null or absent is empty.
func informational(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

func parseBin(raw json.RawMessage) (Bin, error) {
	fields, err := parseObject(raw)
	if err != nil {
		return Bin{}, invalid("bin", "must be an object")
	}

	var bin Bin
	if bin.Width, err = requiredInt(fields, "bin", "width"); err != nil {
		return Bin{}, err
	}
	if bin.Length, err = requiredInt(fields, "bin", "length"); err != nil {
		return Bin{}, err
	}
	if bin.MaximumWeight, err = optionalInt(fields, "bin", "maximumWeight", MaxSafeInteger); err != nil {
		return Bin{}, err
	}
	return bin, nil
}

func parseObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("null object")
	}
	return fields, nil
}

func requiredInt(fields map[string]json.RawMessage, prefix, name string) (int64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, invalid(prefix+"."+name, "is required")
	}
	return parseNonNegative(raw, prefix+"."+name)
}

func optionalInt(fields map[string]json.RawMessage, prefix, name string, def int64) (int64, error) {
	raw, ok := fields[name]
	if !ok {
		return def, nil
	}
	return parseNonNegative(raw, prefix+"."+name)
}

// parseNonNegative accepts JSON numbers with an integral value, including
// forms such as 10.0 or 1e3.
func parseNonNegative(raw json.RawMessage, field string) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, invalid(field, "must be an integer")
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, invalid(field, "must be an integer")
	}

	n, err := num.Int64()
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, invalid(field, "must be an integer")
		}
		n = int64(f)
	}
	if err := checkRange(field, n); err != nil {
		return 0, err
	}
	return n, nil
}

// checkRange limits v to the non-negative safe integers.
func checkRange(field string, v int64) error {
	switch {
	case v < 0:
		return invalid(field, "must not be negative")
	case v > MaxSafeInteger:
		return invalid(field, fmt.Sprintf("must not exceed %d", MaxSafeInteger))
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Validate checks a request assembled in code rather than parsed from JSON.
func (r Request) Validate() error {
	for i, it := range r.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		for _, f := range []struct {
			name string
			v    int64
		}{{"width", it.Width}, {"length", it.Length}, {"weight", it.Weight}, {"cost", it.Cost}} {
			if err := checkRange(prefix+"."+f.name, f.v); err != nil {
				return err
			}
		}
	}
	for _, f := range []struct {
		name string
		v    int64
	}{{"width", r.Bin.Width}, {"length", r.Bin.Length}, {"maximumWeight", r.Bin.MaximumWeight}} {
		if err := checkRange("bin."+f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}
