// Package main is the entry point for the midi2json CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/james-see/midi2json/pkg/api"
	"github.com/james-see/midi2json/pkg/converter"
	"github.com/james-see/midi2json/pkg/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile   string
	formatName   string
	defaultTempo float64
	serverPort   int
	verbose      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midi2json",
	Short: "Convert between standard MIDI files and a JSON note list",
	Long: `midi2json is a tool for converting standard MIDI files to an editable
JSON note-list representation and back.

The JSON schema carries the pulse resolution, a tempo map in beats, and one
entry per note with pitch, start, duration, velocity, track, and channel.
Timing is expressed in beats so the two directions compose losslessly.

Examples:
  midi2json decode song.mid -o song.json
  midi2json encode song.json -o song.mid --tempo 90
  midi2json convert song.mid -o song.json --format compact
  midi2json tui
  midi2json serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var decodeCmd = &cobra.Command{
	Use:   "decode <input.mid>",
	Short: "Convert a MIDI file to JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

var encodeCmd = &cobra.Command{
	Use:   "encode <input.json>",
	Short: "Convert a JSON note list to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncode,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Detects the input format from its extension or content and converts to the format named by the output extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("midi2json %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// decode command
	decodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .json file path")
	decodeCmd.Flags().StringVar(&formatName, "format", "pretty", "JSON output style (pretty or compact)")

	// encode command
	encodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	encodeCmd.Flags().Float64Var(&defaultTempo, "tempo", 120, "Tempo in BPM used when the schema has no tempo map")

	// convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	convertCmd.Flags().StringVar(&formatName, "format", "pretty", "JSON output style (pretty or compact)")
	convertCmd.Flags().Float64Var(&defaultTempo, "tempo", 120, "Tempo in BPM used when the schema has no tempo map")
	_ = convertCmd.MarkFlagRequired("output")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func newConverter() (*converter.Converter, error) {
	style, err := converter.ParseStyle(formatName)
	if err != nil {
		return nil, err
	}
	return converter.New(
		converter.WithLogger(newLogger()),
		converter.WithDefaultTempo(defaultTempo),
		converter.WithStyle(style),
	), nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runDecode(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".json")

	conv, err := newConverter()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	song, err := conv.ParseMIDI(data)
	if err != nil {
		return err
	}

	result, err := conv.GenerateJSON(song)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d notes, %d tempo entries, %s)\n",
		input, output, len(song.Notes), len(song.TempoMap), humanize.Bytes(uint64(len(result))))
	return nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	conv, err := newConverter()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	song, err := conv.ParseJSON(data)
	if err != nil {
		return err
	}

	result, err := conv.GenerateMIDI(song)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d notes, %d tempo entries, %s)\n",
		input, output, len(song.Notes), len(song.TempoMap), humanize.Bytes(uint64(len(result))))
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]

	conv, err := newConverter()
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}

	info, err := os.Stat(outputFile)
	if err != nil {
		return err
	}
	fmt.Printf("Conversion complete! (%s written)\n", humanize.Bytes(uint64(info.Size())))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
