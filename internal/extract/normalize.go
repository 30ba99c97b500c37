package extract

import (
	"fmt"

	"github.com/optistock/alegra-etl/internal/alegra"
)

// Row is one flat output row: column name → scalar value. A nil value is
// written as an empty CSV cell. Every row produced by a mapper carries the
// mapper's full column set.
type Row map[string]any

// Field binds an output column to an extractor over a raw record. A failing
// extractor resolves to null for that column only; the failure is counted
// but never aborts the record or the batch.
type Field struct {
	Column  string
	Extract func(r alegra.Record) (any, error)
}

// RecordMapper turns one raw record into zero-or-more rows. Parent fields
// are copied into every row; for entities with nested line items, item
// fields are applied once per item. A record without items still yields one
// row with the item columns null, so no record is ever lost.
type RecordMapper struct {
	parent []Field
	// itemPaths are candidate locations of the nested item list, tried in
	// order (purchase orders carry items under purchases.items or items).
	itemPaths [][]string
	item      []Field
}

// NewMapper builds a mapper for an entity with nested line items.
func NewMapper(parent []Field, itemPaths [][]string, item []Field) *RecordMapper {
	return &RecordMapper{parent: parent, itemPaths: itemPaths, item: item}
}

// NewFlatMapper builds a mapper for an entity without nested items.
func NewFlatMapper(fields []Field) *RecordMapper {
	return &RecordMapper{parent: fields}
}

// Columns returns the fixed output column order: parent columns first, then
// item columns.
func (m *RecordMapper) Columns() []string {
	cols := make([]string, 0, len(m.parent)+len(m.item))
	for _, f := range m.parent {
		cols = append(cols, f.Column)
	}
	for _, f := range m.item {
		cols = append(cols, f.Column)
	}
	return cols
}

// Normalize maps one raw record into rows and reports the number of field
// extraction failures (each resolved to null).
func (m *RecordMapper) Normalize(rec alegra.Record) ([]Row, int) {
	failures := 0

	base := make(Row, len(m.parent)+len(m.item))
	for _, f := range m.parent {
		v, err := f.Extract(rec)
		if err != nil {
			base[f.Column] = nil
			failures++
			continue
		}
		base[f.Column] = v
	}

	if len(m.item) == 0 {
		return []Row{base}, failures
	}

	items := m.findItems(rec)
	if len(items) == 0 {
		// No nested items: keep the record as a single row with the item
		// columns null. Each unresolvable item field counts as a failure.
		row := cloneRow(base)
		for _, f := range m.item {
			row[f.Column] = nil
		}
		return []Row{row}, failures + len(m.item)
	}

	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := cloneRow(base)
		itemRec, ok := it.(map[string]any)
		if !ok {
			for _, f := range m.item {
				row[f.Column] = nil
			}
			failures += len(m.item)
			rows = append(rows, row)
			continue
		}
		for _, f := range m.item {
			v, err := f.Extract(alegra.Record(itemRec))
			if err != nil {
				row[f.Column] = nil
				failures++
				continue
			}
			row[f.Column] = v
		}
		rows = append(rows, row)
	}
	return rows, failures
}

func (m *RecordMapper) findItems(rec alegra.Record) []any {
	for _, path := range m.itemPaths {
		v, err := lookup(rec, path...)
		if err != nil {
			continue
		}
		if items, ok := v.([]any); ok && len(items) > 0 {
			return items
		}
	}
	return nil
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Key returns an extractor reading a (possibly nested) scalar at the given
// key path, e.g. Key("origin", "name").
func Key(path ...string) func(alegra.Record) (any, error) {
	return func(r alegra.Record) (any, error) {
		return lookup(r, path...)
	}
}

// FirstElemKey returns an extractor reading key from the first element of
// the list at listKey, e.g. the URL of the first item image.
func FirstElemKey(listKey, key string) func(alegra.Record) (any, error) {
	return func(r alegra.Record) (any, error) {
		v, err := lookup(r, listKey)
		if err != nil {
			return nil, err
		}
		list, ok := v.([]any)
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("field %q is not a non-empty list", listKey)
		}
		elem, ok := list[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("first element of %q is not an object", listKey)
		}
		return lookup(alegra.Record(elem), key)
	}
}

func lookup(r alegra.Record, path ...string) (any, error) {
	cur := any(map[string]any(r))
	for i, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object", pathString(path[:i]))
		}
		v, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("missing field %q", pathString(path[:i+1]))
		}
		cur = v
	}
	return cur, nil
}

func pathString(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
