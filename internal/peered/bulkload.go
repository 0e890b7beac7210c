package peered

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ragedb/ragedb/internal/schema"
)

// Bulk CSV import follows the reference loader's header conventions
// (peered/LoadCSV.cpp): a node file names its key column "key" or
// "<property>:key" (the latter also registers the column as a regular
// property); a relationship file names its endpoints "start_key:<Type>"
// and "end_key:<Type>"; any other column is a property unless its name
// ends in ":IGNORE".

// LoadNodesCSV bulk-imports nodes of typeName from r. The type and every
// property column used must already be registered; unrecognized columns
// are skipped rather than rejected, so a CSV can carry extra bookkeeping
// columns. Returns the number of rows that produced or matched a node.
func (c *Coordinator) LoadNodesCSV(ctx context.Context, typeName string, r io.Reader) (int, error) {
	if _, ok := c.nodeTypes.Snapshot().TypeID(typeName); !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	props := c.nodeTypes.Properties(mustTypeID(c.nodeTypes, typeName))

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	keyCol, keyIsProperty := findKeyColumn(header)

	count := 0
	for row := 0; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}

		key := strconv.Itoa(row)
		if keyCol >= 0 && keyCol < len(record) {
			key = record[keyCol]
		}

		properties := buildPropertyMap(header, record, props, keyCol, keyIsProperty, -1)
		if _, err := c.NodeAdd(ctx, typeName, key, properties); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// LoadRelationshipsCSV bulk-imports relTypeName relationships from r. The
// header must carry exactly one "start_key:<Type>" and one
// "end_key:<Type>" column naming the endpoint node types; every distinct
// key on each side is resolved to a node id in two batched lookups before
// any relationship is created (mirroring GetToKeysFromRelationshipsInCSV,
// which resolves every "end" key up front), so a row referencing an
// unknown endpoint is skipped instead of partially written. Returns the
// number of relationships actually created.
func (c *Coordinator) LoadRelationshipsCSV(ctx context.Context, relTypeName string, r io.Reader) (int, error) {
	relTypeID, ok := c.relTypes.Snapshot().TypeID(relTypeName)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, relTypeName)
	}
	props := c.relTypes.Properties(relTypeID)

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	header, rows := rows[0], rows[1:]

	startCol, startType, endCol, endType, ok := findEndpointColumns(header)
	if !ok {
		return 0, fmt.Errorf("peered: relationship CSV for %q has no start_key:<Type>/end_key:<Type> columns", relTypeName)
	}

	seenStart := make(map[string]bool)
	seenEnd := make(map[string]bool)
	var startKeys, endKeys []string
	for _, row := range rows {
		if sk := row[startCol]; !seenStart[sk] {
			seenStart[sk] = true
			startKeys = append(startKeys, sk)
		}
		if ek := row[endCol]; !seenEnd[ek] {
			seenEnd[ek] = true
			endKeys = append(endKeys, ek)
		}
	}

	startIDs, err := c.NodeGetIDs(ctx, startType, startKeys)
	if err != nil {
		return 0, err
	}
	endIDs, err := c.NodeGetIDs(ctx, endType, endKeys)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		id1, ok1 := startIDs[row[startCol]]
		id2, ok2 := endIDs[row[endCol]]
		if !ok1 || !ok2 {
			continue
		}
		properties := buildPropertyMap(header, row, props, startCol, false, endCol)
		relID, err := c.RelationshipAdd(ctx, relTypeName, id1, id2, properties)
		if err != nil {
			return count, err
		}
		if relID != 0 {
			count++
		}
	}
	return count, nil
}

func mustTypeID(r *schema.TypeRegistry, name string) uint16 {
	id, _ := r.Snapshot().TypeID(name)
	return id
}

// findKeyColumn locates a node file's key column: a bare "key", or a
// "<property>:key" column whose property name is kept as keyIsProperty so
// the caller also registers its value under that property name.
func findKeyColumn(header []string) (col int, isProperty bool) {
	for i, h := range header {
		if h == "key" {
			return i, false
		}
		if strings.HasSuffix(h, ":key") {
			return i, true
		}
	}
	return -1, false
}

// findEndpointColumns locates a relationship file's "start_key:<Type>" and
// "end_key:<Type>" columns and extracts the embedded type names.
func findEndpointColumns(header []string) (startCol int, startType string, endCol int, endType string, ok bool) {
	startCol, endCol = -1, -1
	for i, h := range header {
		switch {
		case strings.HasPrefix(h, "start_key:"):
			startCol, startType = i, strings.TrimPrefix(h, "start_key:")
		case strings.HasPrefix(h, "end_key:"):
			endCol, endType = i, strings.TrimPrefix(h, "end_key:")
		}
	}
	return startCol, startType, endCol, endType, startCol >= 0 && endCol >= 0
}

// buildPropertyMap turns one CSV row into the map NodeAdd/RelationshipAdd
// expect, skipping the id/endpoint columns, any "<name>:IGNORE" column, and
// any column whose name isn't a registered property. keyCol is also
// skipped unless keyIsProperty; extraSkipCol skips a second reserved
// column (the relationship end_key column), or pass -1 when there is none.
func buildPropertyMap(header, record []string, props *schema.Registry, keyCol int, keyIsProperty bool, extraSkipCol int) map[string]interface{} {
	snap := props.Snapshot()
	properties := make(map[string]interface{})
	for i, col := range header {
		if i >= len(record) {
			continue
		}
		if (i == keyCol && !keyIsProperty) || i == extraSkipCol {
			continue
		}
		if strings.HasSuffix(col, ":IGNORE") {
			continue
		}
		name := col
		if idx := strings.Index(col, ":"); idx >= 0 {
			name = col[:idx]
		}
		prop, ok := snap.Lookup(name)
		if !ok {
			continue
		}
		if v, ok := parseCSVValue(prop.Kind, record[i]); ok {
			properties[name] = v
		}
	}
	return properties
}

// parseCSVValue decodes a CSV cell into the interface{} shape
// propstore.SetFromJSON expects for kind: a bool for booleans, a float64
// for both integer and floating kinds (JSON numbers are always float64,
// and propstore validates KindI64 by checking the float round-trips), and
// the raw string for strings. List kinds aren't representable in a single
// CSV cell and are left unsupported, matching the reference format.
func parseCSVValue(kind schema.Kind, raw string) (interface{}, bool) {
	if raw == "" {
		return nil, false
	}
	switch kind {
	case schema.KindBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false
		}
		return b, true
	case schema.KindI64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return float64(n), true
	case schema.KindF64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case schema.KindString:
		return raw, true
	default:
		return nil, false
	}
}
