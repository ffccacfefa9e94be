package tile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pspoerri/tilewarp/internal/config"
)

// ProgressLine formats the per-tile line printed while converting.
func ProgressLine(o Outcome) string {
	if o.Status == StatusConverted {
		return o.Tile + " — success"
	}
	return o.Tile + " — failure: " + o.Err
}

// PrintSummary writes the end-of-run totals.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Total tiles: %d\n", s.Total)
	fmt.Fprintf(w, "Converted:   %d\n", s.Converted)
	fmt.Fprintf(w, "Failed:      %d\n", s.Failed)
	fmt.Fprintf(w, "Output:      %s\n", s.OutputRoot)
	fmt.Fprintf(w, "Elapsed:     %s\n", formatDuration(s.Elapsed))
}

// WriteReport writes s as JSON or YAML, chosen by the extension of path.
func WriteReport(path string, s Summary) error {
	var (
		data []byte
		err  error
	)
	switch config.ReportFormat(path) {
	case "json":
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(s)
	default:
		return errors.Errorf("report %s: unknown format", path)
	}
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "writing report %s", path)
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
