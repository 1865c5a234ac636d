package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tsoernes/enhanced-terminal/internal/detect"
)

func detectCmd() *cobra.Command {
	var categories []string
	var maxConcurrency int
	var versionTimeoutMs int
	var includeMissing bool
	var asJSON bool
	var shells bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect installed binaries and shells",
		RunE: func(cmd *cobra.Command, args []string) error {
			if shells {
				return printShells(asJSON)
			}
			reports := detect.DetectBinaries(categories, maxConcurrency, time.Duration(versionTimeoutMs)*time.Millisecond, includeMissing)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			printBinaryReports(reports)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "restrict to these categories (repeatable)")
	cmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 16, "concurrent detection workers")
	cmd.Flags().IntVar(&versionTimeoutMs, "version-timeout-ms", 1500, "per-attempt version probe timeout")
	cmd.Flags().BoolVar(&includeMissing, "include-missing", false, "include not-found candidates in the report")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a human-readable table")
	cmd.Flags().BoolVar(&shells, "shells", false, "detect available login shells instead of tool binaries")

	return cmd
}

func printShells(asJSON bool) error {
	shells := detect.DetectShells()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(shells)
	}
	for _, s := range shells {
		version := s.Version
		if version == "" {
			version = "unknown version"
		}
		fmt.Printf("%s  %s  %s\n", color.CyanString("%-8s", s.Name), s.Path, color.HiBlackString(version))
	}
	return nil
}

func printBinaryReports(reports []detect.BinaryReport) {
	lastCategory := ""
	for _, r := range reports {
		if r.Category != lastCategory {
			fmt.Println(color.New(color.Bold, color.FgYellow).Sprintf("\n%s", r.Category))
			lastCategory = r.Category
		}
		if !r.Found {
			fmt.Printf("  %s  %s\n", color.RedString("%-16s", r.Name), color.HiBlackString("not found"))
			continue
		}
		version := r.Version
		if version == "" {
			version = "version unknown"
		}
		if r.Error != "" {
			version = color.YellowString(r.Error)
		}
		fmt.Printf("  %s  %s  %s\n", color.GreenString("%-16s", r.Name), r.Path, color.HiBlackString(version))
	}
}
