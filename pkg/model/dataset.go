package model

import (
	"strconv"
	"strings"
	"time"
)

// DatasetInfo describes one ingested dataset in API responses.
type DatasetInfo struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	SourceURI string    `json:"source_uri"`
	Rows      int64     `json:"rows"`
	BadRows   int64     `json:"bad_rows"`
	Widths    []int     `json:"widths"`
	CreatedAt time.Time `json:"created_at"`
}

// EncodeWidths renders widths as a comma-separated string for flat storage.
func EncodeWidths(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ",")
}

// DecodeWidths parses a comma-separated width list.
func DecodeWidths(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		widths = append(widths, w)
	}
	return widths, nil
}
