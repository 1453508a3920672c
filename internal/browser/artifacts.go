package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"shopharness/internal/contract"
	"shopharness/pkg/logging"
)

// ArtifactSet names the files captured for one run. Trace is the step log,
// one JSON line per step; Screenshot is only taken on a non-pass.
type ArtifactSet struct {
	Screenshot string `json:"screenshot,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

// artifactStamp builds the shared file-name stem: contract identifier plus
// an ISO-8601 timestamp, made filesystem safe.
func artifactStamp(contractID string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15-04-05Z")
	return fmt.Sprintf("%s_%s", contractID, stamp)
}

// CaptureScreenshot writes a full-page PNG for the session into dir and
// returns its path.
func (s *Session) CaptureScreenshot(dir, contractID string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &contract.EnvironmentError{Op: "create artifact dir", Err: err}
	}
	var buf []byte
	if err := s.Run(DefaultElementTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifactStamp(contractID, time.Now())+".png")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", &contract.EnvironmentError{Op: "write screenshot", Err: err}
	}
	logging.Debug("browser", "captured screenshot %s", path)
	return path, nil
}

// StepLogEntry is one JSON log line of a run's trace.
type StepLogEntry struct {
	Time     time.Time `json:"time"`
	Contract string    `json:"contract"`
	Step     int       `json:"step,omitempty"`
	Action   string    `json:"action"`
	Outcome  string    `json:"outcome"`
	Detail   string    `json:"detail,omitempty"`
}

// StepLog accumulates step entries and writes them as one JSON line per
// step, the trace artifact of a run.
type StepLog struct {
	contractID string
	entries    []StepLogEntry
}

// NewStepLog starts an empty step log for a contract.
func NewStepLog(contractID string) *StepLog {
	return &StepLog{contractID: contractID}
}

// Record appends a step entry.
func (l *StepLog) Record(step int, action, outcome, detail string) {
	l.entries = append(l.entries, StepLogEntry{
		Time:     time.Now().UTC(),
		Contract: l.contractID,
		Step:     step,
		Action:   action,
		Outcome:  outcome,
		Detail:   detail,
	})
}

// Entries returns the recorded entries in insertion order.
func (l *StepLog) Entries() []StepLogEntry { return l.entries }

// Write persists the log into dir, one JSON object per line, and returns
// the file path.
func (l *StepLog) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &contract.EnvironmentError{Op: "create artifact dir", Err: err}
	}
	path := filepath.Join(dir, artifactStamp(l.contractID, time.Now())+".trace.jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", &contract.EnvironmentError{Op: "write step log", Err: err}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, entry := range l.entries {
		if err := enc.Encode(entry); err != nil {
			return "", err
		}
	}
	return path, nil
}
