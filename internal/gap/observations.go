package gap

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// SaveObservations writes the crawl log as Parquet or JSON Lines, chosen by
// the file extension.
func SaveObservations(path string, observations []Observation) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".parquet", ".jsonl", ".json":
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create observation file: %w", err)
	}
	defer file.Close()

	if ext == ".parquet" {
		err = writeParquet(file, observations)
	} else {
		err = writeJSONL(file, observations)
	}
	if err != nil {
		return err
	}

	slog.Debug("Wrote observations", "path", path, "rows", len(observations))
	return file.Close()
}

func writeParquet(file *os.File, observations []Observation) error {
	writer := parquet.NewGenericWriter[Observation](file)
	if _, err := writer.Write(observations); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func writeJSONL(file *os.File, observations []Observation) error {
	w := bufio.NewWriter(file)
	encoder := json.NewEncoder(w)
	for _, o := range observations {
		if err := encoder.Encode(o); err != nil {
			return fmt.Errorf("failed to encode observation: %w", err)
		}
	}
	return w.Flush()
}

// LoadObservations reads a crawl log written by SaveObservations.
func LoadObservations(path string) ([]Observation, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".parquet":
		return loadParquet(path)
	case ".jsonl", ".json":
		return loadJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func loadJSONL(path string) ([]Observation, error) {
	slog.Debug("Opening JSONL file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observation file: %w", err)
	}
	defer file.Close()

	var observations []Observation
	scanner := bufio.NewScanner(file)

	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var o Observation
		if err := json.Unmarshal(line, &o); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		observations = append(observations, o)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading observations: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "rows", len(observations), "total_lines", lineNum)
	return observations, nil
}

func loadParquet(path string) ([]Observation, error) {
	slog.Debug("Opening Parquet file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Observation](pf)
	defer reader.Close()

	observations := make([]Observation, 0, pf.NumRows())
	rows := make([]Observation, 128)
	for {
		n, err := reader.Read(rows)
		observations = append(observations, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "rows", len(observations))
	return observations, nil
}
