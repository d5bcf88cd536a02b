// Package backup snapshots entity families through their adapters into a
// data document and a metadata document.
package backup

import (
	"errors"
	"fmt"
	"time"
)

const (
	DataFile     = "backup-data.json"
	MetadataFile = "backup-metadata.json"
)

// ErrDataMissing is returned when a backup location has no data document.
var ErrDataMissing = errors.New("backup: data document missing")

// Record is one entity in canonical form.
type Record = map[string]any

// Metadata is the provenance a restore validates the data document against.
// Families that failed to export appear in Failed with a zero count.
type Metadata struct {
	BackupDate   time.Time         `json:"backup_date"`
	CutoffDate   *time.Time        `json:"cutoff_date"`
	Tables       []string          `json:"tables"`
	RecordCounts map[string]int    `json:"record_counts"`
	Failed       map[string]string `json:"failed,omitempty"`
}

type Artifact struct {
	Data     map[string][]Record
	Metadata *Metadata
}

// Verify reports whether every family in the metadata carries exactly the
// recorded number of rows in the data document.
func (m *Metadata) Verify(data map[string][]Record) error {
	var errs []error
	for family, want := range m.RecordCounts {
		if got := len(data[family]); got != want {
			errs = append(errs, &CountMismatch{Family: family, Want: want, Got: got})
		}
	}
	for family := range data {
		if _, ok := m.RecordCounts[family]; !ok {
			errs = append(errs, &CountMismatch{Family: family, Want: 0, Got: len(data[family])})
		}
	}
	return errors.Join(errs...)
}

type CountMismatch struct {
	Family    string
	Want, Got int
}

func (e *CountMismatch) Error() string {
	return fmt.Sprintf("backup: %s metadata records %d rows, data holds %d", e.Family, e.Want, e.Got)
}
