package hostsub

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/hostsub/internal/version"
	"github.com/arthur-debert/hostsub/pkg/commands"
	"github.com/arthur-debert/hostsub/pkg/core"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/arthur-debert/hostsub/pkg/ui/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// EnvironmentLoader builds the Environment commands run against.
type EnvironmentLoader func(opts core.Options) (*core.Environment, error)

// cli carries the global flag values and the loader to the subcommands.
type cli struct {
	load EnvironmentLoader

	verbosity  int
	hostsFile  string
	configFile string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithLoader(core.NewEnvironment)
}

// NewRootCmdWithLoader is NewRootCmd with a custom environment loader.
func NewRootCmdWithLoader(load EnvironmentLoader) *cobra.Command {
	initTemplateFormatting()

	c := &cli{load: load}

	rootCmd := &cobra.Command{
		Use:     "hostsub",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(c.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&c.hostsFile, "hosts-file", "", MsgFlagHostsFile)
	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", MsgFlagConfig)

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "backups",
		Title: "BACKUPS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(c.newSubscribeCmd())
	rootCmd.AddCommand(c.newUnsubscribeCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newBackupCmd())
	rootCmd.AddCommand(c.newBackupsCmd())
	rootCmd.AddCommand(c.newRestoreCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func (c *cli) environment() (*core.Environment, error) {
	env, err := c.load(core.Options{
		ConfigFile: c.configFile,
		HostsFile:  c.hostsFile,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrEnvironment, err)
	}
	return env, nil
}

func renderer(cmd *cobra.Command) *output.Renderer {
	w := cmd.OutOrStdout()
	return output.NewRenderer(w, initOutputStyling(w))
}

// subscriptionsCompletion completes registered subscription URLs.
func (c *cli) subscriptionsCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	env, err := c.environment()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var urls []string
	for _, url := range env.Registry.List() {
		if containsString(args, url) {
			continue
		}
		if strings.HasPrefix(url, toComplete) {
			urls = append(urls, url)
		}
	}
	return urls, cobra.ShellCompDirectiveNoFileComp
}

// backupsCompletion completes snapshot names.
func (c *cli) backupsCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env, err := c.environment()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	result, err := commands.ListBackups(commands.ListBackupsOptions{Env: env})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, s := range result.Snapshots {
		if strings.HasPrefix(s.Name, toComplete) {
			names = append(names, s.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (c *cli) newSubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "subscribe <url>",
		Short:   MsgSubscribeShort,
		Long:    MsgSubscribeLong,
		Example: MsgSubscribeExample,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			log.Info().
				Str("hostsFile", env.Config.Hosts.File).
				Str("url", args[0]).
				Msg("Subscribing")

			result, err := commands.Subscribe(commands.SubscribeOptions{
				Env: env,
				URL: args[0],
			})
			if err != nil {
				return fmt.Errorf(MsgErrSubscribe, err)
			}

			renderer(cmd).Subscribe(result)
			return nil
		},
	}
}

func (c *cli) newUnsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unsubscribe <url>",
		Short:             MsgUnsubscribeShort,
		Long:              MsgUnsubscribeLong,
		Args:              cobra.ExactArgs(1),
		GroupID:           "core",
		ValidArgsFunction: c.subscriptionsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			result, err := commands.Unsubscribe(commands.UnsubscribeOptions{
				Env: env,
				URL: args[0],
			})
			if err != nil {
				return fmt.Errorf(MsgErrUnsubscribe, err)
			}

			renderer(cmd).Unsubscribe(result)
			return nil
		},
	}
}

func (c *cli) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "update [urls...]",
		Short:             MsgUpdateShort,
		Long:              MsgUpdateLong,
		GroupID:           "core",
		ValidArgsFunction: c.subscriptionsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			r := renderer(cmd)
			result, err := commands.Update(commands.UpdateOptions{
				Env:      env,
				URLs:     args,
				Progress: r.UpdateProgress,
			})
			if err != nil {
				return fmt.Errorf(MsgErrUpdate, err)
			}

			r.Update(result)
			if result.Outcome == types.OutcomeNone {
				return errors.Newf(errors.ErrDownload, MsgErrUpdateNone, result.Total)
			}
			return nil
		},
	}
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			result, err := commands.List(commands.ListOptions{Env: env})
			if err != nil {
				return fmt.Errorf(MsgErrList, err)
			}

			return renderer(cmd).List(result)
		},
	}
}

func (c *cli) newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		Long:    MsgBackupLong,
		Args:    cobra.NoArgs,
		GroupID: "backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			result, err := commands.Backup(commands.BackupOptions{Env: env})
			if err != nil {
				return fmt.Errorf(MsgErrBackup, err)
			}

			return renderer(cmd).Backup(result)
		},
	}
}

func (c *cli) newBackupsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "backups",
		Short:   MsgBackupsShort,
		Long:    MsgBackupsLong,
		Args:    cobra.NoArgs,
		GroupID: "backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			result, err := commands.ListBackups(commands.ListBackupsOptions{
				Env:   env,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			return renderer(cmd).Backups(result)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, MsgFlagLimit)

	return cmd
}

func (c *cli) newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "restore [snapshot]",
		Short:             MsgRestoreShort,
		Long:              MsgRestoreLong,
		Example:           MsgRestoreExample,
		Args:              cobra.MaximumNArgs(1),
		GroupID:           "backups",
		ValidArgsFunction: c.backupsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.environment()
			if err != nil {
				return err
			}

			r := renderer(cmd)
			var snapshot string
			if len(args) == 0 {
				backups, err := commands.ListBackups(commands.ListBackupsOptions{
					Env:   env,
					Limit: commands.RecentLimit,
				})
				if err != nil {
					return err
				}
				if err := r.Backups(backups); err != nil {
					return err
				}
			} else {
				snapshot = args[0]
			}

			result, err := commands.Restore(commands.RestoreOptions{
				Env:      env,
				Snapshot: snapshot,
			})
			if err != nil {
				return fmt.Errorf(MsgErrRestore, err)
			}

			r.Restore(result)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
