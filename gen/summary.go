package gen

import (
	"fmt"
	"io"

	"github.com/dimonomid/cxmocklogs/record"
)

// WriteSummary prints what was generated: counts, severity distribution, time
// range and file size.
func (r *Result) WriteSummary(w io.Writer) {
	total := len(r.Records)

	fmt.Fprintf(w, "Generated %d log entries (seed %d)\n", total, r.Seed)
	if r.Path != "" {
		fmt.Fprintf(w, "Saved to: %s\n", r.Path)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Severity distribution:")
	for _, sev := range record.AllSeverities {
		count := r.SeverityCounts[sev]
		fmt.Fprintf(w, "  %-5s %d (%.1f%%)\n", sev, count, percent(count, total))
	}

	fmt.Fprintln(w, "")
	if total > 0 {
		fmt.Fprintf(
			w, "Time range: %s to %s\n",
			record.FormatTime(r.Records[0].Timestamp.Time),
			record.FormatTime(r.Records[total-1].Timestamp.Time),
		)
	} else {
		fmt.Fprintln(w, "Time range: none")
	}
	fmt.Fprintf(w, "Applications: %d different applications\n", len(r.AppCounts))

	if r.Path != "" {
		fmt.Fprintf(w, "File size: %d bytes (%.1f KB)\n", r.FileSize, float64(r.FileSize)/1024)
	}
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(count) * 100 / float64(total)
}
