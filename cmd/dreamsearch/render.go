package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Protocol-Lattice/dreamsearch/decorate"
	"github.com/Protocol-Lattice/dreamsearch/internal/config"
	"github.com/Protocol-Lattice/dreamsearch/registry"
	"github.com/Protocol-Lattice/dreamsearch/render"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "render [query...]",
		Short: "Render a query as decorated text",
		Long: `Render a query as decorated text. The query is taken from the arguments,
or from stdin when none are given. Without --style the config file's style
applies, then ansi on a terminal and plain otherwise. Styles: ` + strings.Join(registry.Names(), ", ") + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tty := isTerminal(out)

			if style == "" {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				style = cfg.Style
			}
			if style == "" {
				style = "plain"
				if tty {
					style = "ansi"
				}
			}
			policy, err := registry.Lookup(style)
			if err != nil {
				return err
			}
			if style == "ansi" {
				// Match the color profile of the actual output.
				policy = decorate.ANSI(decorate.DefaultTheme(lipgloss.NewRenderer(out)))
			}

			r := render.New(render.WithSink(render.LogSink(opts.logger)))
			text := decorate.Apply(policy, r.RenderQuery(query))

			limit := width
			if limit == 0 && tty {
				limit = terminalWidth(out)
			}
			_, err = fmt.Fprintln(out, truncateWidth(text, limit))
			return err
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "decoration style (default: config style, then ansi on a terminal, plain otherwise)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "truncate output to this many columns (0: terminal width, or unlimited)")
	return cmd
}

func newUnitsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "units [query...]",
		Short: "Dump the rendered units of a query as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			r := render.New(render.WithSink(render.LogSink(opts.logger)))

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(r.RenderQuery(query)); err != nil {
				return fmt.Errorf("encode units: %w", err)
			}
			return enc.Close()
		},
	}
}

// readQuery joins the arguments, or reads stdin when there are none.
func readQuery(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read query: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		return cols
	}
	return 0
}

// truncateWidth shortens text to limit printable columns, keeping escape
// sequences intact. A limit of zero or less means no limit.
func truncateWidth(text string, limit int) string {
	if limit <= 0 || ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	return truncate.StringWithTail(text, uint(limit), "…")
}
