// kplay – mount the current folder into a throwaway minikube pod
//
// Usage:
//
//	kplay [play]                 – start the pod, open a shell, stop it afterwards
//	kplay start | stop | open    – drive the pod lifecycle step by step
//	kplay status                 – show the cluster and pod status
//	kplay info | config | manifest | doctor | install
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kukushkin/kplay/internal/config"
	"github.com/kukushkin/kplay/internal/doctor"
	"github.com/kukushkin/kplay/internal/log"
	"github.com/kukushkin/kplay/internal/minikube"
	"github.com/kukushkin/kplay/internal/paths"
	"github.com/kukushkin/kplay/internal/pod"
	"github.com/kukushkin/kplay/internal/runner"
)

// app holds the parsed flags and the collaborators shared by every command.
type app struct {
	verbose bool
	image   string
	force   bool

	dirs       paths.Dirs
	runner     runner.Interface
	translator minikube.Translator
	workdir    func() (string, error)
}

func main() {
	a := &app{
		dirs:       paths.DefaultDirs(),
		runner:     runner.New(),
		translator: minikube.NewTranslator(),
		workdir:    os.Getwd,
	}
	if err := a.rootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kplay",
		Short: "Throwaway minikube pods for the current folder",
		Long: `kplay – mount the current folder into a pod running in minikube.

Without a subcommand kplay runs 'play': it starts the pod, opens a shell
inside it and deletes the pod when the shell exits.

Global configuration lives in ~/.kplay/config (or $KPLAY_HOME/config); a
.kplay file in the project folder overrides it.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log.Setup(a.verbose)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPlay(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "echo commands and print debug output")
	root.Flags().StringVarP(&a.image, "image", "i", "", "image to use")

	root.AddCommand(
		a.infoCmd(), a.doctorCmd(), a.configCmd(), a.manifestCmd(), a.statusCmd(),
		a.startCmd(), a.stopCmd(), a.openCmd(), a.playCmd(), a.installCmd(),
	)
	return root
}

// loadPod builds the pod for the working directory from the merged global
// and local configuration.
func (a *app) loadPod() (*pod.Pod, error) {
	cwd, err := a.workdir()
	if err != nil {
		return nil, fmt.Errorf("resolve current folder: %w", err)
	}
	values, err := config.Local(a.dirs, cwd)
	if err != nil {
		return nil, err
	}
	return pod.New(cwd, values, a.translator, pod.Options{
		Image:   a.image,
		Verbose: a.verbose,
		Force:   a.force,
	})
}

// prepare checks requirements and loads the pod.
func (a *app) prepare(ctx context.Context) (*pod.Pod, *pod.Controller, error) {
	if err := doctor.AssertRequirements(ctx, a.runner); err != nil {
		return nil, nil, err
	}
	p, err := a.loadPod()
	if err != nil {
		return nil, nil, err
	}
	return p, pod.NewController(a.runner), nil
}

// ── info ──────────────────────────────────────────────────────────────────────

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display environment info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, "Checking requirements... ")
			if err := doctor.AssertRequirements(cmd.Context(), a.runner); err != nil {
				fmt.Fprintln(out)
				return err
			}
			fmt.Fprintln(out, "OK")

			p, err := a.loadPod()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "     name: %s\n", p.Name)
			fmt.Fprintf(out, "host path: %s\n", p.PathHost)
			fmt.Fprintf(out, "  vm path: %s\n", p.PathVM)
			return nil
		},
	}
}

// ── doctor ────────────────────────────────────────────────────────────────────

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites and suggest fixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			failed := 0
			for _, res := range doctor.RunChecks(cmd.Context(), a.runner, a.translator.OS, a.dirs) {
				if res.OK {
					log.Ok(fmt.Sprintf("%s: %s", res.Name, res.Message))
					continue
				}
				failed++
				log.Error(fmt.Sprintf("%s: %s", res.Name, res.Message))
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", res.HowToFix)
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

// ── config ────────────────────────────────────────────────────────────────────

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the merged local configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := a.workdir()
			if err != nil {
				return fmt.Errorf("resolve current folder: %w", err)
			}
			values, err := config.Local(a.dirs, cwd)
			if err != nil {
				return err
			}
			data, err := values.Marshal()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Global config file: %s\n\n", log.Highlight(a.dirs.ConfigFile()))
			_, err = out.Write(data)
			return err
		},
	}
}

// ── manifest ──────────────────────────────────────────────────────────────────

func (a *app) manifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the pod manifest kplay would apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadPod()
			if err != nil {
				return err
			}
			data, err := p.ManifestYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&a.image, "image", "i", "", "image to use")
	return cmd
}

// ── status ────────────────────────────────────────────────────────────────────

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Display the cluster and pod status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, c, err := a.prepare(cmd.Context())
			if err != nil {
				return err
			}
			return c.Status(cmd.Context(), p)
		},
	}
}

// ── start / stop / open / play ────────────────────────────────────────────────

func (a *app) startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a pod with the current folder mounted inside",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, c, err := a.prepare(cmd.Context())
			if err != nil {
				return err
			}
			return c.Start(cmd.Context(), p)
		},
	}
	cmd.Flags().StringVarP(&a.image, "image", "i", "", "image to use")
	return cmd
}

func (a *app) stopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the pod associated with the current folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, c, err := a.prepare(cmd.Context())
			if err != nil {
				return err
			}
			return c.Stop(cmd.Context(), p)
		},
	}
	cmd.Flags().BoolVar(&a.force, "force", false, "delete the pod immediately (kubectl --force)")
	return cmd
}

func (a *app) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open a shell session in the pod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, c, err := a.prepare(cmd.Context())
			if err != nil {
				return err
			}
			return c.Shell(cmd.Context(), p)
		},
	}
}

func (a *app) playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "(default) Start the pod, open a shell and stop the pod afterwards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPlay(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&a.image, "image", "i", "", "image to use")
	return cmd
}

func (a *app) runPlay(ctx context.Context) error {
	p, c, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	return c.Play(ctx, p)
}

// ── install ───────────────────────────────────────────────────────────────────

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Create the kplay data folder and default global config",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.dirs.EnsureDirs(); err != nil {
				return err
			}
			path := a.dirs.ConfigFile()
			written, err := config.WriteDefaults(path)
			if err != nil {
				return err
			}
			if !written {
				log.Skip(fmt.Sprintf("Config %s already exists", path))
				return nil
			}
			log.Ok(fmt.Sprintf("Default config written to %s", path))
			return nil
		},
	}
}
