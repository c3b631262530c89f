package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/enhance-session/internal"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRaw   bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	entryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	entryMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	sectionLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginBottom(1)
)

// historyCmd groups the saved-prompt commands
var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "Browse and manage saved prompts",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved prompts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openHistoryFromFlags()
		if err != nil {
			return err
		}
		defer closeStore()

		entries := store.Entries()
		if historyLimit > 0 && historyLimit < len(entries) {
			entries = entries[:historyLimit]
		}
		displayEntries(cmd.OutOrStdout(), entries, store.Len(), time.Now())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <entry-id>",
	Short: "Show one saved prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}
		store, closeStore, err := openHistoryFromFlags()
		if err != nil {
			return err
		}
		defer closeStore()

		entry, ok := store.Get(id)
		if !ok {
			return fmt.Errorf("entry not found: %d (use 'enhance-session history list' to see saved prompts)", id)
		}
		if historyRaw {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), entry.EnhancedPrompt)
			return nil
		}
		displayEntry(cmd.OutOrStdout(), entry)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete <entry-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved prompt",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}
		store, closeStore, err := openHistoryFromFlags()
		if err != nil {
			return err
		}
		defer closeStore()

		if _, ok := store.Get(id); !ok {
			return fmt.Errorf("entry not found: %d", id)
		}
		if err := store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete entry %d: %w", id, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
		return nil
	},
}

func openHistoryFromFlags() (*internal.HistoryStore, func(), error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, nil, err
	}
	return env.openHistory()
}

func parseEntryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q (use 'enhance-session history list')", arg)
	}
	return id, nil
}

func displayEntries(w io.Writer, entries []internal.HistoryEntry, total int, now time.Time) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("📋 No saved prompts"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 %d saved prompt(s)", total)))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 80))

	for _, entry := range entries {
		name := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Render(entry.Title())
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", idStyle.Render(strconv.FormatInt(entry.ID, 10)), name, dateStyle.Render(relativeDate(entry.Created(), now)))
	}
	_ = tw.Flush()

	if len(entries) < total {
		_, _ = fmt.Fprintln(w, idStyle.Render(fmt.Sprintf("... (%d more)", total-len(entries))))
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, idStyle.Render("💡 Tip: use the ID with `enhance-session history show <id>` or `enhance-session edit <id>`"))
}

// relativeDate formats t more compactly the closer it is to now
func relativeDate(t, now time.Time) string {
	if t.IsZero() || t.Unix() <= 0 {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	}
	return t.Format("2006-01-02")
}

func displayEntry(w io.Writer, entry internal.HistoryEntry) {
	_, _ = fmt.Fprintln(w, entryHeaderStyle.Render(fmt.Sprintf("💬 %s", entry.Title())))

	metaParts := []string{fmt.Sprintf("ID: %d", entry.ID)}
	if entry.CreatedAt != "" {
		metaParts = append(metaParts, fmt.Sprintf("Created: %s", entry.CreatedAt))
	}
	if entry.TaskID != "" {
		metaParts = append(metaParts, fmt.Sprintf("Task: %s", entry.TaskID))
	}
	_, _ = fmt.Fprintln(w, entryMetaStyle.Render(strings.Join(metaParts, " • ")))

	if entry.Task != "" {
		_, _ = fmt.Fprintln(w, sectionLabelStyle.Render("🎯 Task"))
		_, _ = fmt.Fprintln(w, contentStyle.Render(wrapText(entry.Task, 80)))
	}
	if entry.LazyPrompt != "" {
		_, _ = fmt.Fprintln(w, sectionLabelStyle.Render("✏️  Original prompt"))
		_, _ = fmt.Fprintln(w, contentStyle.Render(wrapText(strings.TrimSpace(entry.LazyPrompt), 80)))
	}
	_, _ = fmt.Fprintln(w, sectionLabelStyle.Render("✨ Enhanced prompt"))
	if content := strings.TrimSpace(entry.EnhancedPrompt); content != "" {
		_, _ = fmt.Fprintln(w, contentStyle.Render(wrapText(content, 80)))
	} else {
		_, _ = fmt.Fprintln(w, contentStyle.Foreground(lipgloss.Color("240")).Render("(empty)"))
	}
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			switch {
			case currentLine == "":
				currentLine = word
			case len(currentLine)+len(word)+1 > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Limit number of entries to show")
	historyShowCmd.Flags().BoolVar(&historyRaw, "raw", false, "Print only the enhanced prompt")
}
