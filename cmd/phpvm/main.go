package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"phpvm/internal/app"
	"phpvm/internal/engine"
	"phpvm/internal/store"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		}
		if ex, ok := err.(ExitCoder); ok {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var jsonOutput bool
	var verbose bool

	newSvc := func() (*app.Service, error) {
		return app.New(app.Options{ConfigPath: configPath, Verbose: verbose})
	}

	cmd := &cobra.Command{
		Use:           "phpvm",
		Short:         "Per-user PHP version manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose diagnostics on stderr")

	cmd.AddCommand(newInstallCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newUseCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newListCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newListRemoteCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newCurrentCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newUninstallCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newAliasCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newWhichCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newExecCmd(newSvc))
	cmd.AddCommand(newEnvCmd(newSvc))
	cmd.AddCommand(newAutoswitchCmd(newSvc))
	cmd.AddCommand(newInitCmd(newSvc))
	cmd.AddCommand(newDoctorCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func newInstallCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "install <version>",
		Aliases: []string{"i", "add"},
		Short:   "Install a PHP version",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			res, err := svc.Install(context.Background(), args[0])
			if err != nil {
				return err
			}
			if res.AlreadyInstalled {
				return print(*jsonOutput, res, fmt.Sprintf("php %s is already installed", res.Version))
			}
			return print(*jsonOutput, res, fmt.Sprintf("installed php %s into %s", res.Version, res.InstallRoot))
		},
	}
}

func newUseCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "use [version]",
		Aliases: []string{"activate", "switch"},
		Short:   "Activate a version, alias, or the project marker",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			ctx, err := svc.Use(cwd, requested)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, ctx, "")
			}
			fmt.Println("now using php", activeStyle.Render(ctx.Version))
			if ctx.Banner != "" {
				fmt.Println(mutedStyle.Render(ctx.Banner))
			}
			return nil
		},
	}
}

func newListCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			records, active, err := svc.List()
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, struct {
					Versions []store.Record `json:"versions"`
					Active   string         `json:"active,omitempty"`
				}{records, active}, "")
			}
			if len(records) == 0 {
				fmt.Println("no versions installed")
				return nil
			}
			for _, rec := range records {
				switch {
				case rec.Version == active:
					fmt.Println("*", activeStyle.Render(rec.Version))
				case rec.Broken:
					fmt.Println(" ", brokenStyle.Render(rec.Version+" (broken)"))
				default:
					fmt.Println(" ", rec.Version)
				}
			}
			return nil
		},
	}
}

func newListRemoteCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "list-remote",
		Aliases: []string{"ls-remote"},
		Short:   "List versions available from the release catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			versions, err := svc.ListRemote(context.Background())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, versions, "")
			}
			for _, v := range versions {
				fmt.Println(v)
			}
			return nil
		},
	}
}

func newCurrentCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active version",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			status, err := svc.Current()
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, status, "")
			}
			fmt.Println("php", activeStyle.Render(status.Version))
			if status.Banner != "" {
				fmt.Println(mutedStyle.Render(status.Banner))
			}
			return nil
		},
	}
}

func newUninstallCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "uninstall <version>",
		Aliases: []string{"rm", "remove"},
		Short:   "Remove an installed version",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			if !yes {
				if !isatty.IsTerminal(os.Stdin.Fd()) {
					return fmt.Errorf("UNI_CONFIRM: refusing to uninstall without --yes on a non-interactive stdin")
				}
				confirmed := false
				prompt := huh.NewConfirm().
					Title(fmt.Sprintf("Remove php %s and all of its files?", args[0])).
					Affirmative("Remove").
					Negative("Keep").
					Value(&confirmed)
				if err := prompt.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("aborted, nothing removed")
					return nil
				}
			}
			if err := svc.Uninstall(args[0]); err != nil {
				return err
			}
			return print(*jsonOutput, map[string]string{"removed": args[0]}, "removed php "+args[0])
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func newAliasCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "alias [name] [target]",
		Short: "List aliases, show one, or point a name at a version",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			switch {
			case remove:
				if len(args) != 1 {
					return fmt.Errorf("ALS_DELETE: --delete takes exactly one alias name")
				}
				if err := svc.AliasRemove(args[0]); err != nil {
					return err
				}
				return print(*jsonOutput, map[string]string{"removed": args[0]}, "removed alias "+args[0])
			case len(args) == 0:
				records, err := svc.AliasList()
				if err != nil {
					return err
				}
				if *jsonOutput {
					return print(true, records, "")
				}
				if len(records) == 0 {
					fmt.Println("no aliases defined")
					return nil
				}
				for _, rec := range records {
					fmt.Printf("%s -> %s\n", rec.Name, rec.Target)
				}
				return nil
			case len(args) == 1:
				target, err := svc.AliasGet(args[0])
				if err != nil {
					return err
				}
				return print(*jsonOutput, map[string]string{"name": args[0], "target": target}, fmt.Sprintf("%s -> %s", args[0], target))
			default:
				if err := svc.AliasSet(args[0], args[1]); err != nil {
					return err
				}
				return print(*jsonOutput, map[string]string{"name": args[0], "target": args[1]}, fmt.Sprintf("%s -> %s", args[0], args[1]))
			}
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the named alias")
	return cmd
}

func newWhichCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "which [version]",
		Short: "Print the binary path for a version (default: active)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			path, err := svc.Which(requested)
			if err != nil {
				return err
			}
			return print(*jsonOutput, map[string]string{"path": path}, path)
		},
	}
}

func newExecCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <version> <cmd...>",
		Short: "Run a command with a version's binary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			code, err := svc.Exec(context.Background(), args[0], args[1:])
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code, msg: ""}
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newEnvCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print export statements for the active version",
		Long: `Print export statements recomposing PATH from the persisted active
version. Intended for eval at session startup by the shell hook; prints
nothing (and exits 0) when no version is active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			ctx, ok, err := svc.Env()
			if err != nil {
				return err
			}
			if ok {
				printExports(ctx)
			}
			return nil
		},
	}
}

func newAutoswitchCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:    "autoswitch",
		Hidden: true,
		Short:  "Directory-change callback for the shell hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Navigation must never be blocked: every failure path here
			// reports to stderr and exits 0.
			svc, err := newSvc()
			if err != nil {
				fmt.Fprintln(os.Stderr, "phpvm: autoswitch:", err)
				return nil
			}
			if dir == "" {
				dir, err = os.Getwd()
				if err != nil {
					return nil
				}
			}
			ctx, switched := svc.AutoSwitch(dir)
			if switched {
				printExports(ctx)
				fmt.Fprintln(os.Stderr, "phpvm: now using php "+ctx.Version)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory that was entered")
	return cmd
}

func newInitCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "init [bash|zsh]",
		Short: "Print the shell integration script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			script, err := svc.InitScript(name)
			if err != nil {
				return err
			}
			fmt.Print(script)
			return nil
		},
	}
}

func newDoctorCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the installation for problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			report := svc.DoctorRun()
			if *jsonOutput {
				if err := print(true, report, ""); err != nil {
					return err
				}
			} else {
				if len(report.Findings) == 0 {
					fmt.Println("no problems found")
				}
				for _, f := range report.Findings {
					line := fmt.Sprintf("[%s] %s: %s", f.Level, f.Code, f.Message)
					switch f.Level {
					case "error":
						fmt.Println(errorStyle.Render(line))
					case "warn":
						fmt.Println(brokenStyle.Render(line))
					default:
						fmt.Println(mutedStyle.Render(line))
					}
				}
			}
			if !report.Healthy {
				return &exitError{code: 1, msg: ""}
			}
			return nil
		},
	}
}

// printExports emits shell statements applying an activation context. Only
// shell code may go to stdout here; the hook evals it.
func printExports(ctx engine.Context) {
	fmt.Printf("export PATH=%s\n", shellQuote(ctx.Path))
	fmt.Printf("export %s=%s\n", engine.EnvVersion, shellQuote(ctx.Version))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func print(jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
		return nil
	}
	if message != "" {
		fmt.Println(message)
	}
	return nil
}
