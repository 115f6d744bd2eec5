// Package dataset loads observation matrices for the mixture and k-means
// algorithms: CSV files with numeric feature columns, optionally with a
// ground-truth label column, and synthetic draws from known mixtures.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrInvalidRange reports a bad feature column range
var ErrInvalidRange = errors.New("dataset: invalid column range")

// Importer reads n x d feature matrices from CSV files
type Importer struct{}

// NewImporter creates a CSV importer
func NewImporter() *Importer {
	return &Importer{}
}

// Import reads the feature columns start..end (inclusive) of every record.
// Records with unparseable values in that range, such as a header row, are
// skipped.
func (im *Importer) Import(file string, start, end int) ([][]float64, error) {
	data, _, err := im.read(file, start, end, -1)
	return data, err
}

// ImportLabeled reads the feature columns start..end (inclusive) plus a
// ground-truth label column. Labels are mapped to dense ints in order of
// first appearance; the returned name table inverts the mapping.
func (im *Importer) ImportLabeled(file string, start, end, labelCol int) ([][]float64, []int, []string, error) {
	if labelCol >= start && labelCol <= end {
		return nil, nil, nil, fmt.Errorf("label column %d overlaps feature range %d..%d: %w", labelCol, start, end, ErrInvalidRange)
	}

	data, rawLabels, err := im.read(file, start, end, labelCol)
	if err != nil {
		return nil, nil, nil, err
	}

	ids := make(map[string]int)
	var names []string
	labels := make([]int, len(rawLabels))
	for i, name := range rawLabels {
		id, ok := ids[name]
		if !ok {
			id = len(names)
			ids[name] = id
			names = append(names, name)
		}
		labels[i] = id
	}

	return data, labels, names, nil
}

func (im *Importer) read(file string, start, end, labelCol int) ([][]float64, []string, error) {
	if start < 0 || end < 0 || start > end {
		return nil, nil, ErrInvalidRange
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var (
		data   [][]float64
		labels []string
		r      = csv.NewReader(bufio.NewReader(f))
		width  = end - start + 1
	)
	r.FieldsPerRecord = -1

Main:
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, err
		}

		if end >= len(record) || labelCol >= len(record) {
			continue
		}

		row := make([]float64, 0, width)
		for j := start; j <= end; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue Main
			}
			row = append(row, v)
		}

		data = append(data, row)
		if labelCol >= 0 {
			labels = append(labels, record[labelCol])
		}
	}

	return data, labels, nil
}
