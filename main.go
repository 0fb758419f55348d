// bacon runs the testbed game on top of the engine package.
//
// Usage:
//
//	bacon run        - Open a window and run the testbed
//	bacon keys       - List the key codes understood by the input layer
//	bacon version    - Print the engine version
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/bacon/engine"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/testbed"

	// registers the glfw platform
	_ "github.com/spaghettifunk/bacon/engine/platform/desktop"
)

var (
	flagConfig   string
	flagHeadless bool
	flagFPS      int
	flagSeed     uint64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bacon",
	Short:         "bacon - a small 2D game runtime",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the testbed game",
	Long: `Open a window and run the testbed game.

Controls:
  Esc     - Quit
  Space   - Play the beep sound
  F       - Grow the window
  Click   - Spawn a sprite

Examples:
  bacon run
  bacon run --config ./bacon.yaml
  bacon run --headless --fps 30`,
	RunE: runTestbed,
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the key codes",
	Run:   runKeys,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	Run: func(cmd *cobra.Command, args []string) {
		major, minor, patch := engine.GetVersion()
		fmt.Printf("bacon %d.%d.%d\n", major, minor, patch)
	},
}

func init() {
	runCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a TOML or YAML config file")
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run without a window or audio device")
	runCmd.Flags().IntVar(&flagFPS, "fps", -1, "Frame rate limit when vsync is off (0 = unlimited)")
	runCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(versionCmd)
}

func runTestbed(cmd *cobra.Command, args []string) error {
	cfg, err := engine.LoadApplicationConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagHeadless {
		cfg.Platform = "headless"
		cfg.AudioSink = "null"
	}
	if flagFPS >= 0 {
		cfg.TargetFPS = flagFPS
	}
	seed := flagSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e, err := engine.New(testbed.NewTestGame(cfg, seed))
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	// start shutdown goroutine
	go func() {
		if _, ok := <-sigCh; ok {
			core.LogInfo("signal received, shutting down")
			_ = e.Shutdown()
		}
	}()

	return e.Run()
}

func runKeys(cmd *cobra.Command, args []string) {
	rows := make([][]string, 0, 128)
	for _, k := range core.AllKeys() {
		rows = append(rows, []string{fmt.Sprintf("0x%03x", uint16(k)), k.String()})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("CODE", "NAME").
		Rows(rows...)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	fmt.Println(title.Render(fmt.Sprintf("%d key codes", len(rows))))
	fmt.Println(t.Render())
}
