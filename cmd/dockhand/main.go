package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.llib.dev/dockhand"
	"go.llib.dev/dockhand/internal/cliconfig"
)

var (
	configPath string
	hostFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "dockhand",
	Short: "Dockhand - Docker daemon command line client",
	Long:  `Dockhand talks to a Docker daemon over its HTTP API, including the long lived streaming endpoints (logs, stats, events, attach, pull).`,
}

func newClient() (*dockhand.Client, error) {
	cfg, err := cliconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	c := &dockhand.Client{
		Host:       cfg.Host,
		APIVersion: cfg.APIVersion,
	}
	if hostFlag != "" {
		c.Host = hostFlag
	}
	if cfg.CertPath != "" {
		tlsc, err := dockhand.LoadTLSConfig(cfg.CertPath, false)
		if err != nil {
			return nil, err
		}
		c.TLSConfig = tlsc
	}
	return c, nil
}

var allContainers bool

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		containers, err := c.ContainerList(cmd.Context(), dockhand.ContainerListOptions{All: allContainers})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONTAINER ID\tIMAGE\tSTATUS\tNAMES")
		for _, ctr := range containers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(ctr.ID), ctr.Image, ctr.Status, names(ctr.Names))
		}
		return w.Flush()
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List images",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		images, err := c.ImageList(cmd.Context(), dockhand.ImageListOptions{})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IMAGE ID\tREPO TAGS\tSIZE")
		for _, img := range images {
			tag := "<none>"
			if len(img.RepoTags) > 0 {
				tag = img.RepoTags[0]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(img.ID), tag, byteSize(img.Size))
		}
		return w.Flush()
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull image[:tag]",
	Short: "Pull an image from a registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		image, tag := splitImageTag(args[0])
		itr, err := c.ImagePull(cmd.Context(), image, tag)
		if err != nil {
			return err
		}
		defer itr.Close()
		for itr.Next() {
			report := itr.Value()
			if err := report.Err(); err != nil {
				return err
			}
			if report.ID != "" {
				fmt.Printf("%s: %s %s\n", report.ID, report.Status, report.Progress)
			} else {
				fmt.Println(report.Status)
			}
		}
		return itr.Err()
	},
}

var (
	followLogs bool
	tailLines  string
)

var logsCmd = &cobra.Command{
	Use:   "logs container",
	Short: "Print the output of a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		stdio, err := c.ContainerLogs(cmd.Context(), args[0], dockhand.LogsOptions{
			Follow: followLogs,
			Stdout: true,
			Stderr: true,
			Tail:   tailLines,
		})
		if err != nil {
			return err
		}
		defer stdio.Close()
		done := make(chan error, 2)
		go func() { _, err := io.Copy(os.Stdout, stdio.Stdout); done <- err }()
		go func() { _, err := io.Copy(os.Stderr, stdio.Stderr); done <- err }()
		for i := 0; i < 2; i++ {
			if err := <-done; err != nil {
				return err
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats container",
	Short: "Follow the live resource usage of a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		itr, err := c.ContainerStats(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		defer itr.Close()
		for itr.Next() {
			sample := itr.Value()
			fmt.Printf("%s  cpu %6.2f%%  mem %s / %s (%5.2f%%)\n",
				sample.Name,
				sample.CPUUsagePercent(),
				byteSize(int64(sample.UsedMemory())),
				byteSize(int64(sample.AvailableMemory())),
				sample.MemoryUsagePercent())
		}
		return itr.Err()
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow the daemon's event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		itr, err := c.Events(cmd.Context(), dockhand.EventsOptions{})
		if err != nil {
			return err
		}
		defer itr.Close()
		for itr.Next() {
			ev := itr.Value()
			ts := time.Unix(ev.Time, 0).Format(time.RFC3339)
			fmt.Printf("%s %s %s %s\n", ts, ev.Type, ev.Action, shortID(ev.Actor.ID))
		}
		return itr.Err()
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach container",
	Short: "Attach the terminal to a running container",
	Long: `Attach the local terminal to the stdio of a running container.

The terminal is put into raw mode so keystrokes reach the container
unmodified. Detach with the container's configured detach keys.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		conn, err := c.ContainerAttachWS(cmd.Context(), args[0], dockhand.AttachOptions{
			Stream: true,
			Stdin:  true,
			Stdout: true,
			Stderr: true,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("failed to set raw mode: %w", err)
			}
			defer term.Restore(fd, oldState)
		}

		go io.Copy(conn, os.Stdin)
		_, err = io.Copy(os.Stdout, conn)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the daemon's version report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		v, err := c.ServerVersion(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Server: %s (API %s)\n", v.Version, v.APIVersion)
		fmt.Printf("Go:     %s\n", v.GoVersion)
		fmt.Printf("OS/Arch: %s/%s\n", v.Os, v.Arch)
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the daemon is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("OK")
		return nil
	},
}

func shortID(id string) string {
	const short = 12
	if len(id) > short {
		return id[:short]
	}
	return id
}

func names(names []string) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ","
		}
		out += stripSlash(name)
	}
	return out
}

func stripSlash(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name[1:]
	}
	return name
}

func byteSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMG"[exp])
}

func splitImageTag(ref string) (image, tag string) {
	for i := len(ref) - 1; i >= 0; i-- {
		switch ref[i] {
		case ':':
			return ref[:i], ref[i+1:]
		case '/':
			return ref, ""
		}
	}
	return ref, ""
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.config/dockhand/config.toml)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Daemon address, e.g. unix:///var/run/docker.sock or tcp://host:2375")

	psCmd.Flags().BoolVarP(&allContainers, "all", "a", false, "Show stopped containers too")
	logsCmd.Flags().BoolVarP(&followLogs, "follow", "f", false, "Keep streaming new log lines")
	logsCmd.Flags().StringVar(&tailLines, "tail", "", "Number of lines to show from the end")

	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pingCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
