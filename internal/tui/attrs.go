package tui

import (
	"sort"

	table "github.com/charmbracelet/bubbles/table"

	"geoshow/internal/feature"
	"geoshow/internal/view"
)

const maxColW = 24

// refreshAttrs rebuilds the table from the drawn layers and moves the
// cursor onto the current selection.
func (m *Model) refreshAttrs() {
	records := make([]*feature.Record, 0, len(m.c.layers))
	for _, dr := range m.c.layers {
		records = append(records, dr.layer.Record)
	}
	cols, rows := buildAttrs(records)
	// If there are no rows, disable attributes view to avoid rendering panics
	if len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "id", Width: 9})
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, maxColW)})
	}
	trows := make([]table.Row, 0, len(rows))
	m.attrIDs = m.attrIDs[:0]
	for i, r := range rows {
		trows = append(trows, table.Row(append([]string{records[i].ID}, r...)))
		m.attrIDs = append(m.attrIDs, records[i].ID)
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
	m.syncAttrCursor()
}

func (m *Model) syncAttrCursor() {
	id, ok := m.session.Selection().Current()
	if !ok {
		return
	}
	for i, rid := range m.attrIDs {
		if rid == id {
			m.tbl.SetCursor(i)
			return
		}
	}
}

// buildAttrs unions property keys across records. image:path comes first
// when present, the rest sorted by name.
func buildAttrs(records []*feature.Record) ([]string, [][]string) {
	seen := map[string]bool{}
	var keys []string
	for _, r := range records {
		if r.Feature == nil {
			continue
		}
		for k := range r.Feature.Properties {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == feature.ImagePathProperty || keys[j] == feature.ImagePathProperty {
			return keys[i] == feature.ImagePathProperty
		}
		return keys[i] < keys[j]
	})
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		vals := make([]string, len(keys))
		for i, k := range keys {
			v, _ := r.Property(k)
			vals[i] = truncate(view.FormatValue(v), maxColW)
		}
		rows = append(rows, vals)
	}
	return keys, rows
}
