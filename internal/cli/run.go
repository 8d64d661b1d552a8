package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdir/pkg/buildinfo"
	"github.com/matzehuels/chartdir/pkg/command"
	"github.com/matzehuels/chartdir/pkg/config"
)

// sharedStore picks the store for one-shot commands. Handles of a memory
// store die with the process, so those commands fall back to the file
// store unless --store says otherwise.
func (c *CLI) sharedStore(flag string) string {
	if flag != "" {
		return flag
	}
	if c.cfg.Charts.Store == config.StoreMemory {
		return config.StoreFile
	}
	return c.cfg.Charts.Store
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var (
		output  string
		store   string
		vars    map[string]string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "run [script|-]",
		Short: "Run a chart script",
		Long: `Run executes a script of chartdir commands, one per line. Without an
argument, or with "-", the script is read from standard input.

Example script:
  c = create xy 400 300
  layer $c create line "1 4 2 8" sales
  save $c sales.png`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScripts,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readScript(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if output != "" {
				c.cfg.Paths.OutputDir = output
			}

			sess, err := c.open(cmd.Context(), store, noCache)
			if err != nil {
				return err
			}
			defer sess.Close()

			stmts, err := command.ParseScript(src)
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			res, err := sess.interp.Run(cmd.Context(), stmts, vars)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Ran %d commands", len(stmts)))
			return writeResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory save writes into (default from config)")
	cmd.Flags().StringVar(&store, "store", "", "handle store: memory, file or redis (default from config)")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "script variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the rendered image cache")

	return cmd
}

func readScript(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

// writeResult prints a command result. Images go out raw.
func writeResult(w io.Writer, res command.Result) error {
	if res.IsEmpty() {
		return nil
	}
	if res.Type == command.TypeBytes {
		_, err := w.Write(res.Bytes)
		return err
	}
	_, err := fmt.Fprintln(w, res.String())
	return err
}

// execCommand creates the exec command.
func (c *CLI) execCommand() *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "exec command [args...]",
		Short: "Run one command against the shared handle store",
		Long: `Exec runs a single command. Handles persist in the file store (or redis)
between invocations:

  id=$(chartdir exec create xy 400 300)
  chartdir exec layer $id create bar "3 5 7"
  chartdir exec image $id png > chart.png`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeCommandNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.open(cmd.Context(), c.sharedStore(store), false)
			if err != nil {
				return err
			}
			defer sess.Close()

			res, err := sess.interp.Exec(cmd.Context(), args)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res)
		},
	}
	// Command words such as -plotarea must reach the interpreter.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&store, "store", "", "handle store: file or redis (default file)")

	return cmd
}

// chartsCommand creates the charts command.
func (c *CLI) chartsCommand() *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "List live chart handles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.open(cmd.Context(), c.sharedStore(store), true)
			if err != nil {
				return err
			}
			defer sess.Close()

			entries, err := sess.reg.Charts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				printInfo(out, "No live charts")
				return nil
			}

			idle := sess.reg.IdleTimeout()
			rows := make([][]string, len(entries))
			for i, e := range entries {
				age := time.Since(e.AccessTime).Round(time.Second)
				rows[i] = []string{
					strconv.FormatUint(e.ID, 10),
					e.AccessTime.Local().Format(time.DateTime),
					age.String(),
					(idle - age).Round(time.Second).String(),
				}
			}
			printTable(out, []string{"ID", "LAST ACCESS", "IDLE", "EXPIRES IN"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "handle store: file or redis (default file)")

	return cmd
}

// gcCommand creates the gc command.
func (c *CLI) gcCommand() *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Reclaim chart handles idle longer than the idle timeout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.open(cmd.Context(), c.sharedStore(store), true)
			if err != nil {
				return err
			}
			defer sess.Close()

			ids, err := sess.reg.GC(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				printInfo(out, "Nothing to reclaim")
				return nil
			}
			printSuccess(out, "Reclaimed %d charts", len(ids))
			for _, id := range ids {
				printDetail(out, "#%d", id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "handle store: file or redis (default file)")

	return cmd
}

// commandsCommand lists the interpreter's commands.
func (c *CLI) commandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the script commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(command.Commands(), "\n"))
			return nil
		},
	}
}

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render(buildinfo.Short()))
			printKeyValue(out, "commit", buildinfo.Commit)
			printKeyValue(out, "built", buildinfo.Date)
			printKeyValue(out, "config", c.configFile())
			return nil
		},
	}
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	p, err := config.DefaultPath()
	if err != nil {
		return "-"
	}
	return p
}
