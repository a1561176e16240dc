package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

var unsafeName = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
)

// Filename is cleaning_report_{sourceName}_{unixMillis}.txt with path
// separators in the name replaced.
func Filename(sourceName string, ts time.Time) string {
	name := unsafeName.Replace(strings.TrimSpace(sourceName))
	if name == "" || name == "." || name == ".." {
		name = "data_source"
	}
	return fmt.Sprintf("cleaning_report_%s_%d.txt", name, ts.UnixMilli())
}

// Save renders the report into dir and returns the written path.
func Save(dir string, r *models.CleaningReport, source *models.DataSource, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, Filename(source.Name, now))
	if err := os.WriteFile(path, []byte(Render(r, source, now)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
