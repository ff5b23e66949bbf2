// Package ioformats reads url lists and writes record CSVs. Output goes
// through struct tags so the header set stays in one place (the models),
// and embedded delimiters, quotes and newlines are escaped by the CSV
// layer.
package ioformats

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"bgg-go-crawler/internal/models"
)

// ReadURLs reads game page urls from a CSV (any column named "url") or an
// NDJSON file. When the extension is ambiguous, CSV is tried first.
func ReadURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVURLs(path)
	case ".ndjson", ".jsonl":
		return readNDJSONURLs(path)
	default:
		if urls, err := readCSVURLs(path); err == nil && len(urls) > 0 {
			return urls, nil
		}
		return readNDJSONURLs(path)
	}
}

func readCSVURLs(path string) ([]string, error) {
	rows, err := ReadSummaries(path)
	if err == nil && len(rows) > 0 {
		urls := make([]string, 0, len(rows))
		for _, r := range rows {
			if u := strings.TrimSpace(r.URL); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) > 0 {
			return urls, nil
		}
	}

	// not a summary CSV; accept any file with a url column
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	type urlRow struct {
		URL string `csv:"url"`
	}
	var generic []urlRow
	if err := gocsv.UnmarshalFile(f, &generic); err != nil {
		return nil, err
	}
	var urls []string
	for _, r := range generic {
		if u := strings.TrimSpace(r.URL); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("csv contains no urls")
	}
	return urls, nil
}

func readNDJSONURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// accept {"url": "..."} objects or bare url lines
		if strings.HasPrefix(line, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(line), &obj); err == nil {
				if s, ok := obj["url"].(string); ok && s != "" {
					urls = append(urls, s)
					continue
				}
			}
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, errors.New("no urls found in ndjson")
	}
	return urls, nil
}

// ReadSummaries loads a summary CSV produced by WriteSummaries.
func ReadSummaries(path string) ([]models.GameSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []models.GameSummary
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// WriteSummaries writes summary records with the fixed header
// category,name,year,url,image_url.
func WriteSummaries(w io.Writer, rows []models.GameSummary) error {
	return gocsv.Marshal(&rows, w)
}

// WriteDetails writes detail records; list columns are rendered by
// models.PipeList.
func WriteDetails(w io.Writer, rows []models.GameDetail) error {
	return gocsv.Marshal(&rows, w)
}
