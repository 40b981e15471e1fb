package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/illarion/cloak/internal/core"
)

// MinShortID is the shortest ID prefix ls prints
const MinShortID = 8

// Ls lists hidden items
func Ls(quiet bool) {
	app := OpenUnlocked()
	defer app.Close()

	entries := app.Engine.Entries()
	if quiet {
		for _, id := range shortIDs(entries) {
			fmt.Println(id)
		}
		return
	}

	if len(entries) == 0 {
		fmt.Println("Nothing is hidden")
		return
	}
	printEntries(entries)
}

func printEntries(entries []core.Entry) {
	ids := shortIDs(entries)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tNAME\tSIZE\tHIDDEN\tORIGINAL PATH")
	for i, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ids[i], e.Level(), e.DisplayName(), formatSize(e.Size),
			e.HiddenAt.Local().Format(time.DateTime), e.OriginalPath)
	}
	w.Flush()
}

// shortIDs returns for each entry the shortest prefix of its ID, at least
// MinShortID characters, that no other entry shares.
func shortIDs(entries []core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		n := MinShortID
		for ; n < len(e.ID); n++ {
			unique := true
			for j, other := range entries {
				if j != i && len(other.ID) >= n && other.ID[:n] == e.ID[:n] {
					unique = false
					break
				}
			}
			if unique {
				break
			}
		}
		if n > len(e.ID) {
			n = len(e.ID)
		}
		out[i] = e.ID[:n]
	}
	return out
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
