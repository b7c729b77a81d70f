package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/archivist/internal/archivelog"
	"github.com/nao1215/archivist/internal/cache"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the session cache for drift and optionally repair it",
		Long: `Doctor walks every session in the cache, cross-checking the on-disk
page files against each session's metadata and the doctor index, and
reports what it finds: orphaned index rows, corrupt page or session
files, sessions stuck active well past the session timeout, and
sessions whose recorded page count disagrees with what is actually on
disk.

Without --fix, doctor only reports. With --fix, every repairable issue
is corrected: orphan index rows are deleted, corrupt page files are
removed, expired-active sessions are marked failed, and mismatched
page counts are rewritten to match the filesystem.`,
		RunE: runDoctorCmd,
	}

	cmd.Flags().Bool("fix", false, "Repair issues instead of only reporting them")
	cmd.Flags().Duration("session-timeout", 24*time.Hour, "How long an active session may go without progress before it is considered abandoned")

	return cmd
}

func runDoctorCmd(cmd *cobra.Command, _ []string) error {
	fix, err := cmd.Flags().GetBool("fix")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("session-timeout")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := archivelog.New(os.Stderr, getVerboseFlag(cmd))
	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	report, err := store.Doctor(fix, timeout)
	if err != nil {
		return fmt.Errorf("doctor: %w", err)
	}

	fmt.Printf("Checked %d session(s), %d issue(s) found", report.SessionsSeen, len(report.Issues))
	if fix {
		fmt.Printf(", %d fixed", report.SessionsFixed)
	}
	fmt.Println()

	if len(report.Issues) == 0 {
		fmt.Println(color.GreenString("No issues found."))
		return nil
	}

	printIssuesTable(report.Issues)
	return nil
}

func printIssuesTable(issues []cache.Issue) {
	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"Session", "Kind", "Detail", "Fixed"})
	for _, issue := range issues {
		fixed := color.YellowString("no")
		if issue.Fixed {
			fixed = color.GreenString("yes")
		}
		table.Append([]string{string(issue.SessionID), string(issue.Kind), issue.Detail, fixed})
	}
	table.Render()
}
