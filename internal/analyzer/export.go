package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hhpulse/analyzer-service/internal/model"
)

// Export serializes a result to an indented JSON file in the configured
// export directory, named from the query text and the current local time.
// Returns the path of the written file.
func (a *Analyzer) Export(result *model.Analysis) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_analysis_%s.json",
		strings.ReplaceAll(result.Query, " ", "_"), timestamp)
	path := filepath.Join(a.exportDir, filename)

	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}
