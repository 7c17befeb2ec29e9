package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"mood-journal-backend/internal/extension"
)

const extTimeout = 10 * time.Second

func addExt(topLevel *cobra.Command, e *env) {
	var syncer *extension.Syncer

	cmd := &cobra.Command{
		Use:   "ext",
		Short: "Manage tasks the way the browser extension does.",
		Example: `
moodjournal ext add drink a glass of water
moodjournal ext list
moodjournal ext toggle 3f2b...
`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			cache, err := extension.OpenCache(e.cfg.ExtCacheDir)
			if err != nil {
				return err
			}
			syncer = extension.NewSyncer(cache, extension.NewClient(e.cfg.APIBase, extTimeout), e.log.Named("extension"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	withSyncer := func(fn func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return fn(cmd.Context(), syncer, cmd.OutOrStdout(), args)
		}
	}

	var output string
	list := &cobra.Command{
		Use:   "list",
		Short: "List cached tasks, incomplete first.",
		Args:  cobra.NoArgs,
		RunE: withSyncer(func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error {
			return printTasks(out, s.List(ctx), output)
		}),
	}
	list.Flags().StringVarP(&output, "output", "o", "", "output format: table or json")

	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task and sync it to the backend.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSyncer(func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error {
			t, ok, err := s.Add(ctx, strings.Join(args, " "))
			if err != nil || !ok {
				return err
			}
			return printTasks(out, []extension.LocalTask{t}, output)
		}),
	}

	toggle := &cobra.Command{
		Use:   "toggle LOCAL_ID",
		Short: "Flip a task between done and not done.",
		Args:  cobra.ExactArgs(1),
		RunE: withSyncer(func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error {
			t, err := s.Toggle(ctx, args[0])
			if err != nil {
				return err
			}
			return printTasks(out, []extension.LocalTask{t}, output)
		}),
	}

	edit := &cobra.Command{
		Use:   "edit LOCAL_ID TEXT...",
		Short: "Replace a task's text.",
		Args:  cobra.MinimumNArgs(2),
		RunE: withSyncer(func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error {
			t, err := s.Edit(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printTasks(out, []extension.LocalTask{t}, output)
		}),
	}

	rm := &cobra.Command{
		Use:     "rm LOCAL_ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task.",
		Args:    cobra.ExactArgs(1),
		RunE: withSyncer(func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error {
			return s.Delete(ctx, args[0])
		}),
	}

	var pageURL string
	capture := &cobra.Command{
		Use:   "capture [TEXT...]",
		Short: "Save selected text, or a page with --url, as a local task.",
		RunE: withSyncer(func(ctx context.Context, s *extension.Syncer, out io.Writer, args []string) error {
			var (
				t   extension.LocalTask
				ok  bool
				err error
			)
			if pageURL != "" {
				t, ok, err = s.CapturePage(strings.Join(args, " "), pageURL)
			} else {
				t, ok, err = s.Capture(strings.Join(args, " "))
			}
			if err != nil || !ok {
				return err
			}
			return printTasks(out, []extension.LocalTask{t}, output)
		}),
	}
	capture.Flags().StringVar(&pageURL, "url", "", "page URL; the text becomes the page title")

	for _, c := range []*cobra.Command{add, toggle, edit, capture} {
		c.Flags().StringVarP(&output, "output", "o", "", "output format: table or json")
	}
	cmd.AddCommand(list, add, toggle, edit, rm, capture)

	topLevel.AddCommand(cmd)
}

func printTasks(w io.Writer, tasks []extension.LocalTask, output string) error {
	switch output {
	case "json":
		b, err := json.Marshal(tasks)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	default:
		if len(tasks) == 0 {
			_, err := fmt.Fprintln(w, "No tasks yet.")
			return err
		}
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.AddRow("", "ID", "Task", "Created", "Synced")
		for _, t := range tasks {
			mark := color.YellowString("[ ]")
			text := t.Text
			if t.Done {
				mark = color.GreenString("[x]")
				text = color.New(color.Faint).Sprint(t.Text)
			}
			synced := color.RedString("local")
			if t.BackendID != nil {
				synced = fmt.Sprintf("#%d", *t.BackendID)
			}
			tbl.AddRow(mark, t.LocalID, text, t.CreatedAt.Local().Format("Jan 2 15:04"), synced)
		}
		_, err := fmt.Fprintln(w, tbl)
		return err
	}
}
