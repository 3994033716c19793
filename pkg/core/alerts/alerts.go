// Package alerts buffers per-document processing alerts and persists them as
// JSON artifacts at the end of a batch. Alerts split into two buckets for the
// notification collaborator: warnings on inserted records, and fatal reasons
// for documents that never made it to storage.
package alerts

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"insider_filings/pkg/models"
)

// jakarta is the exchange's timezone; alert timestamps follow it so they
// line up with announcement dates.
var jakarta = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}()

// Manager is safe for concurrent use by document workers.
type Manager struct {
	mu     sync.Mutex
	alerts []models.Alert
	now    func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// Log appends one alert with a Jakarta-time timestamp.
func (m *Manager) Log(stage, code string, severity models.AlertSeverity, message, filename string, ctx map[string]interface{}) {
	a := models.Alert{
		Stage:    stage,
		Code:     code,
		Severity: severity,
		Message:  message,
		Filename: filename,
		Context:  ctx,
		LoggedAt: m.now().In(jakarta).Format("2006-01-02T15:04:05-07:00"),
	}
	m.mu.Lock()
	m.alerts = append(m.alerts, a)
	m.mu.Unlock()
}

// All returns a copy of the buffered alerts.
func (m *Manager) All() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Alert(nil), m.alerts...)
}

// Len reports the number of buffered alerts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

// Buckets splits alerts by severity: warnings ride along inserted records,
// fatal alerts explain documents that were not inserted.
func (m *Manager) Buckets() (inserted, notInserted []models.Alert) {
	for _, a := range m.All() {
		if a.Severity == models.SeverityFatal {
			notInserted = append(notInserted, a)
		} else {
			inserted = append(inserted, a)
		}
	}
	return inserted, notInserted
}

// WriteArtifacts persists both buckets under dir as
// alerts_inserted_{date}.json and alerts_not_inserted_{date}.json.
func (m *Manager) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create alerts dir: %w", err)
	}
	date := m.now().In(jakarta).Format("2006-01-02")
	inserted, notInserted := m.Buckets()

	files := []struct {
		name   string
		alerts []models.Alert
	}{
		{fmt.Sprintf("alerts_inserted_%s.json", date), inserted},
		{fmt.Sprintf("alerts_not_inserted_%s.json", date), notInserted},
	}
	for _, f := range files {
		if f.alerts == nil {
			f.alerts = []models.Alert{}
		}
		path := filepath.Join(dir, f.name)
		if err := writeJSONAtomic(path, f.alerts); err != nil {
			return err
		}
		log.Printf("[Alerts] wrote %d alert(s) to %s", len(f.alerts), path)
	}
	return nil
}

// writeJSONAtomic writes to a sibling tmp file and renames it into place so
// a crashed run never leaves a truncated artifact.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
