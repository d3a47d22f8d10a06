package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// runShell starts the interactive SQL shell over the logical views.
func (a *app) runShell(ctx context.Context, o *IO) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}

	prompt := liner.NewLiner()
	defer prompt.Close()

	prompt.SetCtrlCAborts(true)
	prompt.SetCompleter(shellCompleter)

	if f, openErr := os.Open(shellHistoryFile()); openErr == nil {
		_, _ = prompt.ReadHistory(f)
		_ = f.Close()
	}

	o.Printf("bearq shell - %s\n", db.Path())
	o.Println("Views: notes, tags, note_tags, note_links. Type 'help' for commands.")
	o.Println()

	for {
		input, promptErr := prompt.Prompt("bearq> ")
		if promptErr != nil {
			if errors.Is(promptErr, liner.ErrPromptAborted) || errors.Is(promptErr, io.EOF) {
				o.Println()

				break
			}

			return fmt.Errorf("reading input: %w", promptErr)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		prompt.AppendHistory(input)

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			saveShellHistory(prompt)

			return nil

		case "help", "?":
			printShellHelp(o)

		case "views", "tables":
			o.Println("notes       id, unique_id, title, content, modified, created, is_pinned, is_trashed, is_archived")
			o.Println("tags        id, name, modified")
			o.Println("note_tags   note_id, tag_id")
			o.Println("note_links  from_note_id, to_note_id")

		default:
			table, queryErr := db.Query(ctx, input)
			if queryErr != nil {
				o.ErrPrintln("error:", queryErr)

				continue
			}

			o.Printf("%s", renderTable(table))
		}
	}

	saveShellHistory(prompt)

	return nil
}

// shellHistoryFile returns the path to the history file.
func shellHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".bearq_history")
}

// saveShellHistory persists command history to disk.
func saveShellHistory(prompt *liner.State) {
	path := shellHistoryFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = prompt.WriteHistory(f)
		_ = f.Close()
	}
}

// shellCompleter completes SQL keywords and view names.
func shellCompleter(line string) []string {
	words := []string{
		"SELECT ", "select ",
		"notes", "tags", "note_tags", "note_links",
		"help", "views", "exit", "quit",
	}

	var completions []string

	for _, w := range words {
		if strings.HasPrefix(w, line) {
			completions = append(completions, w)
		}
	}

	return completions
}

func printShellHelp(o *IO) {
	o.Println("Commands:")
	o.Println("  <sql>            Run a SELECT against the logical views")
	o.Println("  views            Show the view columns")
	o.Println("  help             Show this help")
	o.Println("  exit / quit / q  Exit")
	o.Println()
	o.Println("Example: SELECT title, modified FROM notes LIMIT 5")
}
