package analyze

import (
	"fmt"
	"io"
	"strings"

	"github.com/dimonomid/cxmocklogs/record"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	reportTitle = "=== Coralogix EKS Fargate Mock Logs Analysis ==="

	reportTimeLayout = "2006-01-02 15:04:05 UTC"

	patternExampleLen = 80
	sampleTextLen     = 100

	volumeBarWidth = 40
)

// WriteReport prints all the stats as a multi-section report.
func (s *Stats) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", reportTitle)
	fmt.Fprintf(w, "Total log entries: %d\n", s.Total)

	fmt.Fprintf(w, "\nApplications (%d total):\n", len(s.Applications))
	writeCounts(w, s.Applications)

	fmt.Fprintf(w, "\nContainers/Subsystems (%d total):\n", len(s.Containers))
	writeCounts(w, s.Containers)

	pairs := make([]Count, 0, len(s.Pairs))
	for _, p := range s.Pairs {
		pairs = append(pairs, Count{Name: p.App + "/" + p.Container, Count: p.Count})
	}
	fmt.Fprintf(w, "\nApplication/Container pairs (%d total):\n", len(pairs))
	writeCounts(w, pairs)

	fmt.Fprintf(w, "\nSeverity Distribution:\n")
	sevWidth := 0
	for _, sc := range s.Severities {
		sevWidth = max(sevWidth, runewidth.StringWidth(string(sc.Severity)))
	}
	for _, sc := range s.Severities {
		fmt.Fprintf(
			w, "  %s  %d logs (%.1f%%)\n",
			runewidth.FillRight(string(sc.Severity), sevWidth), sc.Count, sc.Percent,
		)
	}

	fmt.Fprintf(w, "\nError Analysis (%d errors):\n", s.NumErrors)
	for _, p := range s.ErrorPatterns {
		fmt.Fprintf(w, "  %s: %d errors\n", p.Name, p.Count)
		fmt.Fprintf(w, "    Example: %s\n", excerpt(p.Example.Text, patternExampleLen))
	}

	fmt.Fprintf(w, "\nTime Range:\n")
	if s.Total > 0 {
		fmt.Fprintf(w, "  Start: %s\n", s.Start.UTC().Format(reportTimeLayout))
		fmt.Fprintf(w, "  End: %s\n", s.End.UTC().Format(reportTimeLayout))
		fmt.Fprintf(w, "  Duration: %s\n", s.Duration())
	} else {
		fmt.Fprintf(w, "  No logs\n")
	}

	s.writeVolume(w)

	fmt.Fprintf(w, "\nKubernetes Metadata:\n")
	fmt.Fprintf(w, "  Unique namespaces: %d\n", s.UniqueNamespaces)
	fmt.Fprintf(w, "  Unique Fargate hosts: %d\n", s.UniqueHosts)

	fmt.Fprintf(w, "\nSample Error Entries:\n")
	if len(s.Samples) == 0 {
		fmt.Fprintf(w, "  No errors\n")
	}
	for _, e := range s.Samples {
		fmt.Fprintf(w, "\n  %s/%s %s:\n", e.ApplicationName, e.SubsystemName, e.Severity)
		fmt.Fprintf(w, "     Time: %s\n", record.FormatTime(e.Timestamp))
		fmt.Fprintf(w, "     Text: %s\n", excerpt(e.Text, sampleTextLen))
	}
}

func (s *Stats) writeVolume(w io.Writer) {
	fmt.Fprintf(w, "\nVolume (per %s):\n", s.VolumeBinSize)
	if len(s.Volume) == 0 {
		fmt.Fprintf(w, "  No logs\n")
		return
	}

	maxCount := 0
	for _, b := range s.Volume {
		maxCount = max(maxCount, b.Count)
	}

	for _, b := range s.Volume {
		barLen := b.Count * volumeBarWidth / maxCount
		if barLen == 0 && b.Count > 0 {
			barLen = 1
		}

		fmt.Fprintf(
			w, "  %s %s %d\n",
			b.Start.UTC().Format("15:04"),
			runewidth.FillRight(strings.Repeat("█", barLen), volumeBarWidth),
			b.Count,
		)
	}
}

func writeCounts(w io.Writer, counts []Count) {
	nameWidth := 0
	for _, c := range counts {
		nameWidth = max(nameWidth, runewidth.StringWidth(c.Name))
	}

	for _, c := range counts {
		fmt.Fprintf(w, "  %s  %d logs\n", runewidth.FillRight(c.Name, nameWidth), c.Count)
	}
}

// excerpt returns at most maxLen user-perceived characters of s, with
// "..." appended if anything was cut.
func excerpt(s string, maxLen int) string {
	if uniseg.GraphemeClusterCount(s) <= maxLen {
		return s
	}

	var sb strings.Builder
	gr := uniseg.NewGraphemes(s)
	for n := 0; n < maxLen && gr.Next(); n++ {
		sb.WriteString(gr.Str())
	}
	sb.WriteString("...")

	return sb.String()
}
