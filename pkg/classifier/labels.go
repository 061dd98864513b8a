package classifier

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadLabels reads the class index -> label map. Supported inputs are a
// Hugging Face config.json (id2label), a CSV with index,label columns or an
// XLSX sheet with the same columns.
func LoadLabels(path string) ([]string, error) {
	var (
		m   map[int]string
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		m, err = loadLabelsJSON(path)
	case ".csv":
		m, err = loadLabelsCSV(path)
	case ".xlsx":
		m, err = loadLabelsXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported label file %q", path)
	}
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}
	return denseLabels(m)
}

func loadLabelsJSON(path string) (map[int]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		ID2Label map[string]string `json:"id2label"`
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	out := make(map[int]string, len(cfg.ID2Label))
	for k, v := range cfg.ID2Label {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("id2label key %q: %w", k, err)
		}
		out[i] = v
	}
	return out, nil
}

func loadLabelsCSV(path string) (map[int]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return labelsFromRows(rows)
}

func loadLabelsXLSX(path string) (map[int]string, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(s, "labels") {
			sheet = s
			break
		}
	}
	rows, err := x.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return labelsFromRows(rows)
}

// labelsFromRows accepts an optional header row; column aliases are matched
// after normalization.
func labelsFromRows(rows [][]string) (map[int]string, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("no rows")
	}
	norm := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, "\uFEFF") // BOM
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, "-", "")
		s = strings.ReplaceAll(s, "_", "")
		return s
	}

	idxCol, labelCol := 0, 1
	body := rows
	if _, err := strconv.Atoi(norm(rows[0][0])); err != nil {
		hmap := map[string]int{}
		for i, h := range rows[0] {
			hmap[norm(h)] = i
		}
		findAny := func(keys ...string) int {
			for _, k := range keys {
				if idx, ok := hmap[k]; ok {
					return idx
				}
			}
			return -1
		}
		idxCol = findAny("index", "id", "classid", "class")
		labelCol = findAny("label", "name", "classname", "disease")
		if idxCol < 0 || labelCol < 0 {
			return nil, fmt.Errorf("header %v: need index and label columns", rows[0])
		}
		body = rows[1:]
	}

	out := make(map[int]string, len(body))
	for n, r := range body {
		if len(r) <= idxCol || len(r) <= labelCol {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSpace(r[idxCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad index %q", n+1, r[idxCol])
		}
		out[i] = strings.TrimSpace(r[labelCol])
	}
	return out, nil
}

// denseLabels turns an index map into a slice and rejects gaps.
func denseLabels(m map[int]string) ([]string, error) {
	if len(m) == 0 {
		return nil, errors.New("no labels")
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		if k != i {
			return nil, fmt.Errorf("label index %d missing", i)
		}
		out[i] = m[k]
	}
	return out, nil
}

// CleanLabel makes dataset-style class names readable:
// "Tomato___Late_blight" -> "Tomato Late blight".
func CleanLabel(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
