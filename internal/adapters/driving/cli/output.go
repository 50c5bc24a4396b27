package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// Output formats for structured artifacts.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	headingStyle = color.New(color.Bold, color.FgCyan)
	labelStyle   = color.New(color.Bold)
	mutedStyle   = color.New(color.Faint)
	successStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.Bold, color.FgRed)
)

// addOutputFlag registers --output on cmd.
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", formatText, "output format: text, json or yaml")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("getting output flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case formatText, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// reportError renders an operation failure. Structured formats get the
// payload on stdout; text gets an error carrying the payload message.
func reportError(cmd *cobra.Command, format string, err error) error {
	payload := domain.PayloadFor(err)
	if format == formatText {
		if payload.Raw != "" {
			cmd.PrintErrln(mutedStyle.Sprint("Raw model output:"))
			cmd.PrintErrln(payload.Raw)
		}
		return fmt.Errorf("%s", payload.Error)
	}
	if werr := writeStructured(cmd.OutOrStdout(), format, payload); werr != nil {
		return werr
	}
	return errReported
}

func verdictColor(verdict string) *color.Color {
	switch {
	case strings.EqualFold(verdict, domain.VerdictSelected):
		return successStyle
	case strings.EqualFold(verdict, domain.VerdictRejected):
		return errorStyle
	default:
		return mutedStyle
	}
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintln(w, labelStyle.Sprint(title+":"))
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Sprint("  (none)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func renderRoadmap(w io.Writer, company, role string, items []domain.RoadmapItem) {
	fmt.Fprintln(w, headingStyle.Sprintf("Roadmap: %s at %s", role, company))
	fmt.Fprintln(w)
	if len(items) == 0 {
		fmt.Fprintln(w, "No roadmap items.")
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, labelStyle.Sprint(item.Title), mutedStyle.Sprintf("[%s, %s]", item.Date, item.Status))
		if item.Description != "" {
			fmt.Fprintf(w, "     %s\n", item.Description)
		}
	}
}

func renderSkills(w io.Writer, a *domain.SkillsAnalysis) {
	fmt.Fprintln(w, headingStyle.Sprint("Skills analysis"))
	fmt.Fprintln(w)
	printList(w, "Present skills", a.PresentSkills)
	printList(w, "Missing skills", a.MissingSkills)
	fmt.Fprintln(w, labelStyle.Sprint("Recommendations:"))
	if len(a.Recommendations) == 0 {
		fmt.Fprintln(w, mutedStyle.Sprint("  (none)"))
	}
	for _, r := range a.Recommendations {
		fmt.Fprintf(w, "  - %s: %s\n", r.Skill, r.Action)
	}
}

func renderATS(w io.Writer, r *domain.AtsReport) {
	fmt.Fprintln(w, headingStyle.Sprint("ATS report"))
	fmt.Fprintln(w)
	score := successStyle
	if r.AtsScore < 60 {
		score = errorStyle
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Sprint("Score:"), score.Sprintf("%d/100", r.AtsScore))
	printList(w, "Missing keywords", r.MissingKeywords)
	printList(w, "Formatting issues", r.FormattingIssues)
	printList(w, "Suggestions", r.TailoredSuggestions)
}

func renderExperiences(w io.Writer, company string, items []domain.Experience) {
	fmt.Fprintln(w, headingStyle.Sprintf("Interview experiences: %s", company))
	fmt.Fprintln(w)
	if len(items) == 0 {
		fmt.Fprintln(w, "No interview experiences found.")
		return
	}
	for i, e := range items {
		fmt.Fprintf(w, "  [%d] %s %s\n", i+1, labelStyle.Sprint(e.Role), verdictColor(e.Verdict).Sprint(e.Verdict))
		if e.CandidateProfile != "" {
			fmt.Fprintf(w, "      Candidate: %s\n", e.CandidateProfile)
		}
		if len(e.Rounds) > 0 {
			fmt.Fprintf(w, "      Rounds: %s\n", strings.Join(e.Rounds, "; "))
		}
		for _, q := range e.QuestionsAsked {
			fmt.Fprintf(w, "      - %s\n", q)
		}
		if e.Tips != "" {
			fmt.Fprintf(w, "      Tips: %s\n", e.Tips)
		}
		fmt.Fprintln(w)
	}
}

// Spreadsheet sheet names.
const (
	roadmapSheet     = "Roadmap"
	experiencesSheet = "Experiences"
)

// writeSheet saves header and rows as a single-sheet workbook at path.
func writeSheet(path, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func exportRoadmap(path string, items []domain.RoadmapItem) error {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Title, it.Status, it.Date, it.Description}
	}
	return writeSheet(path, roadmapSheet, []any{"Title", "Status", "Date", "Description"}, rows)
}

func exportExperiences(path string, items []domain.Experience) error {
	rows := make([][]any, len(items))
	for i, e := range items {
		rows[i] = []any{
			e.Role,
			e.CandidateProfile,
			e.Verdict,
			strings.Join(e.Rounds, "\n"),
			strings.Join(e.QuestionsAsked, "\n"),
			e.Tips,
		}
	}
	return writeSheet(path, experiencesSheet,
		[]any{"Role", "Candidate", "Verdict", "Rounds", "Questions", "Tips"}, rows)
}
