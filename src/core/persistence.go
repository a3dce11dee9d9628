package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const snapshotFilename = "registry_snapshot.json"

// registrySnapshot is the on-disk form of the full registry state
type registrySnapshot struct {
	Reports       map[uint64]Report       `json:"reports"`
	Users         map[Principal]User      `json:"users"`
	Authorities   map[Principal]Authority `json:"authorities"`
	Messages      map[uint64]Message      `json:"messages"`
	NextReportID  uint64                  `json:"nextReportId"`
	NextMessageID uint64                  `json:"nextMessageId"`
}

// SaveSnapshot writes the full registry state to a JSON file
func (n *WhisprNode) SaveSnapshot(dataDir string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	snapshot := registrySnapshot{
		Reports:       n.store.reports,
		Users:         n.store.users,
		Authorities:   n.store.authorities,
		Messages:      n.store.messages,
		NextReportID:  n.store.nextReportID,
		NextMessageID: n.store.nextMessageID,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry snapshot: %w", err)
	}

	filePath := filepath.Join(dataDir, snapshotFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry snapshot: %w", err)
	}

	logger.Info("Saved registry snapshot", "file", filePath,
		"reports", len(snapshot.Reports), "users", len(snapshot.Users))
	return nil
}

// LoadSnapshot restores registry state from a JSON file. A missing file is
// not an error; the node starts empty.
func (n *WhisprNode) LoadSnapshot(dataDir string) error {
	filePath := filepath.Join(dataDir, snapshotFilename)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read registry snapshot: %w", err)
	}

	var snapshot registrySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal registry snapshot: %w", err)
	}

	n.mu.Lock()
	if snapshot.Reports != nil {
		n.store.reports = snapshot.Reports
	}
	if snapshot.Users != nil {
		n.store.users = snapshot.Users
	}
	if snapshot.Authorities != nil {
		n.store.authorities = snapshot.Authorities
	}
	if snapshot.Messages != nil {
		n.store.messages = snapshot.Messages
	}
	if snapshot.NextReportID > 0 {
		n.store.nextReportID = snapshot.NextReportID
	}
	if snapshot.NextMessageID > 0 {
		n.store.nextMessageID = snapshot.NextMessageID
	}
	authoritiesGauge.Set(float64(len(n.store.authorities)))
	n.mu.Unlock()

	logger.Info("Loaded registry snapshot", "file", filePath,
		"reports", len(snapshot.Reports), "users", len(snapshot.Users),
		"authorities", len(snapshot.Authorities))
	return nil
}
