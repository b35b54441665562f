package sitemap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sitescout/sitescout/internal/model"
)

// utf8BOM is written at the start of every inventory file and tolerated
// at the start of every file read.
const utf8BOM = "\uFEFF"

// header is the fixed CSV column layout.
var header = []string{"URL", "Title", "Description", "Depth", "Type"}

// LoadKnown reads an inventory file and returns the set of URLs it
// lists. A missing file is not an error: it yields an empty set, which
// is exactly the first-run case. The remaining columns are ignored
// because only membership matters for skip decisions.
func LoadKnown(path string) (map[string]struct{}, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user's own config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("open known urls file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	known := make(map[string]struct{})
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read known urls file %s: %w", path, err)
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}

		url := row[0]
		if first {
			first = false
			url = strings.TrimPrefix(url, utf8BOM)
			if strings.EqualFold(url, header[0]) {
				continue
			}
		}
		known[url] = struct{}{}
	}

	return known, nil
}

// Load reads an inventory file into full discovery records. Rows with
// an unparsable depth or type are returned as an error rather than
// silently dropped.
func Load(path string) ([]model.DiscoveryRecord, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user's own config
	if err != nil {
		return nil, fmt.Errorf("open inventory %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(header)

	records := []model.DiscoveryRecord{}
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read inventory %s: %w", path, err)
		}

		if first {
			first = false
			row[0] = strings.TrimPrefix(row[0], utf8BOM)
			if strings.EqualFold(row[0], header[0]) {
				continue
			}
		}

		depth, err := model.ParseDepth(row[3])
		if err != nil {
			return nil, fmt.Errorf("inventory %s, url %s: %w", path, row[0], err)
		}
		typ, err := model.ParseNodeType(row[4])
		if err != nil {
			return nil, fmt.Errorf("inventory %s, url %s: %w", path, row[0], err)
		}

		records = append(records, model.DiscoveryRecord{
			URL:         row[0],
			Title:       row[1],
			Description: row[2],
			Depth:       depth,
			Type:        typ,
		})
	}

	return records, nil
}

// LoadPrior reads an inventory that may not exist yet. A missing file
// yields no records, which is the first-run case for an output file
// that doubles as the known list.
func LoadPrior(path string) ([]model.DiscoveryRecord, error) {
	records, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.DiscoveryRecord{}, nil
	}
	return records, err
}

// Save writes the records to path, replacing whatever the file held
// before. Checkpoints call this repeatedly with a growing slice, so a
// full rewrite is what keeps the file consistent with the crawl state.
func Save(path string, records []model.DiscoveryRecord) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the user's own config
	if err != nil {
		return fmt.Errorf("create inventory %s: %w", path, err)
	}

	if _, err := f.WriteString(utf8BOM); err != nil {
		f.Close()
		return fmt.Errorf("write inventory %s: %w", path, err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write inventory header %s: %w", path, err)
	}
	for _, r := range records {
		row := []string{
			r.URL,
			r.Title,
			r.Description,
			model.FormatDepth(r.Depth),
			r.Type.String(),
		}
		if err := writer.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write inventory row %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush inventory %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close inventory %s: %w", path, err)
	}
	return nil
}
