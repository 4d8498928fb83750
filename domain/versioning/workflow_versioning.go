package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"workflowbuilder/domain/core/aggregates"
)

// WorkflowVersion is a point-in-time fingerprint of a workflow graph
type WorkflowVersion struct {
	WorkflowID      string    `json:"workflow_id"`
	Version         int       `json:"version"`
	Checksum        string    `json:"checksum"`
	NodeCount       int       `json:"node_count"`
	ConnectionCount int       `json:"connection_count"`
	CreatedAt       time.Time `json:"created_at"`

	nodeIDs       map[string]string
	connectionIDs map[string]bool
}

// Capture fingerprints the workflow's current graph
func Capture(wf *aggregates.Workflow) (*WorkflowVersion, error) {
	if wf == nil {
		return nil, fmt.Errorf("workflow cannot be nil")
	}
	snap := wf.Snapshot()
	checksum, err := Checksum(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	v := &WorkflowVersion{
		WorkflowID:      snap.ID.String(),
		Version:         snap.Version,
		Checksum:        checksum,
		NodeCount:       len(snap.Nodes),
		ConnectionCount: len(snap.Connections),
		CreatedAt:       time.Now(),
		nodeIDs:         make(map[string]string, len(snap.Nodes)),
		connectionIDs:   make(map[string]bool, len(snap.Connections)),
	}
	for _, n := range snap.Nodes {
		body, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v.nodeIDs[n.ID.String()] = string(body)
	}
	for _, c := range snap.Connections {
		v.connectionIDs[c.ID.String()] = true
	}
	return v, nil
}

// Checksum returns a stable hash of the graph content. The version counter
// and timestamps are excluded so equal graphs hash equally.
func Checksum(snap aggregates.WorkflowSnapshot) (string, error) {
	data := struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Nodes       interface{} `json:"nodes"`
		Connections interface{} `json:"connections"`
	}{
		ID:          snap.ID.String(),
		Name:        snap.Name,
		Nodes:       snap.Nodes,
		Connections: snap.Connections,
	}

	// encoding/json sorts map keys, so params hash deterministically
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:]), nil
}

// VersionDiff represents the difference between two captures
type VersionDiff struct {
	FromVersion     int       `json:"from_version"`
	ToVersion       int       `json:"to_version"`
	NodesDiff       CountDiff `json:"nodes_diff"`
	ConnectionsDiff CountDiff `json:"connections_diff"`
}

// CountDiff counts added, removed and changed items
type CountDiff struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Updated int `json:"updated"`
}

// Compare diffs two captures of the same workflow
func Compare(from, to *WorkflowVersion) (*VersionDiff, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("versions cannot be nil")
	}

	diff := &VersionDiff{FromVersion: from.Version, ToVersion: to.Version}
	for id, body := range to.nodeIDs {
		prev, ok := from.nodeIDs[id]
		switch {
		case !ok:
			diff.NodesDiff.Added++
		case prev != body:
			diff.NodesDiff.Updated++
		}
	}
	for id := range from.nodeIDs {
		if _, ok := to.nodeIDs[id]; !ok {
			diff.NodesDiff.Removed++
		}
	}
	for id := range to.connectionIDs {
		if !from.connectionIDs[id] {
			diff.ConnectionsDiff.Added++
		}
	}
	for id := range from.connectionIDs {
		if !to.connectionIDs[id] {
			diff.ConnectionsDiff.Removed++
		}
	}
	return diff, nil
}
