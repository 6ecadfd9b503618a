package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/amishk599/jobpress/internal/schema"
)

var (
	numericCellRe = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{2,3})+|\d+|[-–—])$`)
	separatorRe   = regexp.MustCompile(`^[\s|:\-–—]+$`)
)

// tableCandidates finds every table in text whose header matches the field's
// columns and copies its rows cell for cell, in source order.
func tableCandidates(text string, f schema.Field) []candidate {
	numeric := false
	for _, c := range f.Columns {
		if c.Numeric {
			numeric = true
			break
		}
	}

	ls := lines(text)
	offsets := make([]int, len(ls)+1)
	for i, l := range ls {
		offsets[i+1] = offsets[i] + len(l) + 1
	}

	var out []candidate
	for i := 0; i < len(ls); i++ {
		var rows [][]string
		var next int
		if numeric {
			order, ok := numericHeader(ls[i], f.Columns)
			if !ok {
				continue
			}
			rows, next = numericRows(ls, i+1, f.Columns, order)
		} else {
			index, ok := textHeader(ls[i], f.Columns)
			if !ok {
				continue
			}
			rows, next = textRows(ls, i+1, len(splitCells(ls[i])), index)
		}
		if len(rows) == 0 {
			continue
		}
		end := offsets[next] - 1
		if end > len(text) {
			end = len(text)
		}
		out = append(out, candidate{
			rows:   rows,
			key:    rowsKey(rows),
			offset: offsets[i],
			span:   text[offsets[i]:end],
		})
		i = next - 1
	}
	return out
}

// numericHeader reports whether line names every numeric column, and returns
// the schema indices of those columns in the order the header lists them.
func numericHeader(line string, cols []schema.Column) ([]int, bool) {
	type hit struct{ col, pos int }
	var hits []hit
	used := map[int]bool{}
	for i, c := range cols {
		if !c.Numeric {
			continue
		}
		loc := c.Re.FindStringIndex(line)
		if loc == nil || used[loc[0]] {
			return nil, false
		}
		used[loc[0]] = true
		hits = append(hits, hit{col: i, pos: loc[0]})
	}
	if len(hits) == 0 {
		return nil, false
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })
	order := make([]int, len(hits))
	for i, h := range hits {
		order[i] = h.col
	}
	return order, true
}

func numericRows(ls []string, from int, cols []schema.Column, order []int) ([][]string, int) {
	labelCol := -1
	for i, c := range cols {
		if !c.Numeric {
			labelCol = i
			break
		}
	}
	var rows [][]string
	i := from
	for ; i < len(ls); i++ {
		line := strings.TrimSpace(ls[i])
		if line == "" {
			break
		}
		if strings.Contains(line, "-") && separatorRe.MatchString(line) {
			continue
		}
		label, nums, ok := splitNumericRow(line, len(order))
		if !ok {
			break
		}
		row := make([]string, len(cols))
		if labelCol >= 0 {
			row[labelCol] = label
		}
		for k, col := range order {
			row[col] = nums[k]
		}
		rows = append(rows, row)
	}
	return rows, i
}

// splitNumericRow splits "Central Railway | 10 | 5 | 21" or "ZoneA 10 5 21"
// into a label and exactly n trailing numeric cells.
func splitNumericRow(line string, n int) (string, []string, bool) {
	var cells []string
	if strings.Contains(line, "|") {
		cells = splitCells(line)
	} else {
		for _, tok := range strings.Fields(line) {
			cells = append(cells, strings.TrimRight(tok, ","))
		}
	}
	if len(cells) < n+1 {
		return "", nil, false
	}
	nums := cells[len(cells)-n:]
	for _, c := range nums {
		if !numericCellRe.MatchString(c) {
			return "", nil, false
		}
	}
	label := strings.TrimSpace(strings.Join(cells[:len(cells)-n], " "))
	if label == "" || numericCellRe.MatchString(label) {
		return "", nil, false
	}
	return label, nums, true
}

// textHeader maps schema columns to header cell indices. All non-optional
// columns must be present, and at least two columns must match.
func textHeader(line string, cols []schema.Column) ([]int, bool) {
	if !strings.Contains(line, "|") {
		return nil, false
	}
	cells := splitCells(line)
	index := make([]int, len(cols))
	used := map[int]bool{}
	matched := 0
	for i, c := range cols {
		index[i] = -1
		for j, cell := range cells {
			if !used[j] && c.Re.MatchString(cell) {
				index[i] = j
				used[j] = true
				matched++
				break
			}
		}
		if index[i] < 0 && !c.Optional {
			return nil, false
		}
	}
	return index, matched >= 2
}

func textRows(ls []string, from, width int, index []int) ([][]string, int) {
	var rows [][]string
	i := from
	for ; i < len(ls); i++ {
		line := strings.TrimSpace(ls[i])
		if !strings.Contains(line, "|") {
			break
		}
		if separatorRe.MatchString(line) {
			continue
		}
		cells := splitCells(line)
		if len(cells) != width {
			break
		}
		row := make([]string, len(index))
		for col, j := range index {
			if j >= 0 {
				row[col] = cells[j]
			}
		}
		rows = append(rows, row)
	}
	return rows, i
}

// splitCells splits a pipe-separated line, dropping the outer borders.
func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func rowsKey(rows [][]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.ToLower(strings.Join(r, "\x1f")))
		b.WriteByte('\x1e')
	}
	return b.String()
}
