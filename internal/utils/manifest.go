package utils

import (
	"time"

	"github.com/google/uuid"
)

// RowCounts records how many rows survived each loading stage.
type RowCounts struct {
	Read     int `json:"read"`
	NoStatus int `json:"no_smoking_status"`
	Filtered int `json:"filtered_out"`
	Analysed int `json:"analysed"`
}

// Manifest describes one invocation and the artifacts it produced.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	Input      string    `json:"input"`
	Parameters []string  `json:"parameters"`
	Filter     string    `json:"filter"`
	Rows       RowCounts `json:"rows"`
	Outputs    []string  `json:"outputs"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(command, input string, params []string, filter string) *Manifest {
	return &Manifest{
		RunID:      uuid.NewString(),
		Command:    command,
		Input:      input,
		Parameters: params,
		Filter:     filter,
		CreatedAt:  time.Now().UTC(),
	}
}

// AddOutput records a written artifact.
func (m *Manifest) AddOutput(path string) { m.Outputs = append(m.Outputs, path) }

// Write stores the manifest as indented JSON at path.
func (m *Manifest) Write(path string) error {
	b, err := PrettyJSON(m)
	if err != nil {
		return err
	}
	return SafeWriteFile(path, append(b, '\n'))
}
