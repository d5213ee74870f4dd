package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	reportPrefix = "foodinsight_"
	reportExt    = ".pdf"
	stampLayout  = "20060102_150405"
)

// Store keeps rendered reports (and optionally the source photos) on
// the local filesystem so an external runner can collect them as build
// artifacts.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "artifacts"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifacts dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// ReportName returns the canonical file name for a record's report.
// Page IDs may contain dashes; everything else is stripped.
func ReportName(pageID string, at time.Time) string {
	return reportPrefix + sanitizeID(pageID) + "_" + at.Format(stampLayout) + reportExt
}

// SaveReport writes a rendered report and returns its file name.
func (s *Store) SaveReport(pageID string, at time.Time, data []byte) (string, error) {
	name := ReportName(pageID, at)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return name, nil
}

// SavePhoto writes the downloaded meal photo next to the report.
func (s *Store) SavePhoto(pageID string, at time.Time, data []byte, contentType string) (string, error) {
	name := "photo_" + sanitizeID(pageID) + "_" + at.Format(stampLayout) + extForContentType(contentType)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return name, nil
}

// ReportInfo describes one stored report.
type ReportInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListReports returns stored reports, newest first.
func (s *Store) ListReports() ([]ReportInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading artifacts dir: %w", err)
	}

	var reports []ReportInfo
	for _, e := range entries {
		if e.IsDir() || !isReportName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ModTime.After(reports[j].ModTime)
	})
	return reports, nil
}

// OpenReport returns the contents of a stored report by name. Names are
// validated against the report naming scheme so path traversal through
// the HTTP surface is impossible.
func (s *Store) OpenReport(name string) ([]byte, error) {
	if !isReportName(name) {
		return nil, fmt.Errorf("invalid report name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return data, nil
}

func isReportName(name string) bool {
	if !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportExt) {
		return false
	}
	return !strings.ContainsAny(name, "/\\") && !strings.Contains(name, "..")
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, id)
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
