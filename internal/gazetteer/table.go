package gazetteer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Region is one row of the region table.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Table is an immutable, in-memory copy of the region table. It is safe for
// concurrent reads.
type Table struct {
	rows  []Region
	lower []string // lowercased names, parallel to rows
	names map[string]string
}

// Parse reads a headerless CSV of code,name[,...] rows. Rows with fewer than
// two columns are skipped; extra columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	t := &Table{names: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read region table: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		region := Region{
			Code: strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")),
			Name: strings.TrimSpace(rec[1]),
		}
		t.add(region)
	}
	return t, nil
}

// NewTable builds a table from rows already in memory.
func NewTable(rows []Region) *Table {
	t := &Table{
		rows:  make([]Region, 0, len(rows)),
		lower: make([]string, 0, len(rows)),
		names: make(map[string]string, len(rows)),
	}
	for _, r := range rows {
		t.add(r)
	}
	return t
}

// add appends a row; later duplicates of a code win the name lookup.
func (t *Table) add(r Region) {
	t.rows = append(t.rows, r)
	t.lower = append(t.lower, strings.ToLower(r.Name))
	t.names[r.Code] = r.Name
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in table order. Callers must not modify the slice.
func (t *Table) Rows() []Region { return t.rows }

// Name looks up a region name by exact code.
func (t *Table) Name(code string) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}

// Hierarchy returns the ancestor chain of code from the province down to the
// code itself. A prefix with no row in the table contributes its raw code.
func (t *Table) Hierarchy(code string) []string {
	if code == "" {
		return nil
	}
	parts := strings.Split(code, ".")
	chain := make([]string, 0, len(parts))
	for k := 1; k <= len(parts); k++ {
		p := prefix(parts, k)
		if name, ok := t.names[p]; ok {
			chain = append(chain, name)
		} else {
			chain = append(chain, p)
		}
	}
	return chain
}

// HierarchySeparator joins the names of a hierarchy string.
const HierarchySeparator = " > "

// HierarchyString is Hierarchy joined with HierarchySeparator.
func (t *Table) HierarchyString(code string) string {
	return strings.Join(t.Hierarchy(code), HierarchySeparator)
}

// Children returns the district's own name and its direct village-level
// children in table order. ErrNotFound is returned when the district code has
// no exact row or its row has an empty name, which is distinct from a district
// without villages.
func (t *Table) Children(districtCode string) (string, []Region, error) {
	districtCode = strings.TrimSpace(districtCode)
	name, ok := t.names[districtCode]
	if !ok || districtCode == "" || name == "" {
		return "", nil, fmt.Errorf("district %q: %w", districtCode, ErrNotFound)
	}

	children := make([]Region, 0)
	for _, r := range t.rows {
		if strings.HasPrefix(r.Code, districtCode+".") && Classify(r.Code) == LevelVillage {
			children = append(children, r)
		}
	}
	return name, children, nil
}
