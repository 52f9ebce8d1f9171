package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/midiout"
)

var (
	convertOut    string
	convertTo     string
	convertPreset string
)

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "output file (default stdout)")
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "", "output format: json|yaml|msq|mid (default from --output, else json)")
	convertCmd.Flags().StringVar(&convertPreset, "preset", "", "start from a built-in song instead of files")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Join songs and write them in another format",
	Long: `Imports the given files in order of the number in their names, appending
each to the last, and writes the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := msq.NewSession(sessionOptions()...)
		if err := loadSong(s, convertPreset, args); err != nil {
			return err
		}
		kind := convertTo
		if kind == "" {
			kind = strings.TrimPrefix(filepath.Ext(convertOut), ".")
		}
		data, err := encode(s, kind)
		if err != nil {
			return err
		}
		return writeOutput(convertOut, data)
	},
}

func encode(s *msq.Session, kind string) ([]byte, error) {
	switch strings.ToLower(kind) {
	case "", "json":
		return s.Export()
	case "yaml", "yml":
		return s.ExportYAML()
	case "msq":
		text, err := s.ExportCompact()
		return []byte(text), err
	case "mid", "midi":
		var buf bytes.Buffer
		err := midiout.WriteSMF(&buf, s.Score())
		return buf.Bytes(), err
	}
	return nil, fmt.Errorf("unknown output format %q (expected json|yaml|msq|mid)", kind)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return err
	}
	logger.Info("wrote", "path", path, "bytes", len(data))
	return f.Close()
}
