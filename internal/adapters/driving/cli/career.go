package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask a question about the interview process",
	Long: `Answers a free-form question from the knowledge base.

The answer is grounded in the most relevant passages of the ingested
corpus. When nothing relevant is found the reply says so.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var roadmapCmd = &cobra.Command{
	Use:   "roadmap [company] [role]",
	Short: "Build a preparation roadmap",
	Long:  `Builds an ordered preparation plan for a company and role from past interview experiences.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runRoadmap,
}

var skillsCmd = &cobra.Command{
	Use:   "skills [company] [role]",
	Short: "Compare a resume against a role",
	Long: `Lists the skills a resume shows and the ones the role needs but the
resume lacks, with a recommendation for each gap.`,
	Args: cobra.ExactArgs(2),
	RunE: runSkills,
}

var atsCmd = &cobra.Command{
	Use:   "ats [company] [role]",
	Short: "Score a resume for applicant tracking systems",
	Long:  `Scores a resume from 0 to 100 and lists missing keywords, formatting issues and tailored suggestions.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runATS,
}

var experiencesCmd = &cobra.Command{
	Use:   "experiences [company]",
	Short: "Summarise past interview experiences",
	Long:  `Extracts one structured record per interview experience mentioning the company.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExperiences,
}

func init() {
	for _, cmd := range []*cobra.Command{chatCmd, roadmapCmd, skillsCmd, atsCmd, experiencesCmd} {
		addOutputFlag(cmd)
	}
	for _, cmd := range []*cobra.Command{skillsCmd, atsCmd} {
		cmd.Flags().String("resume", "", "resume file (.pdf or text)")
		_ = cmd.MarkFlagRequired("resume")
	}
	for _, cmd := range []*cobra.Command{roadmapCmd, experiencesCmd} {
		cmd.Flags().String("xlsx", "", "also write the result to an Excel workbook")
	}

	rootCmd.AddCommand(chatCmd, roadmapCmd, skillsCmd, atsCmd, experiencesCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if err := ensureReady(cmd.Context()); err != nil {
		return err
	}

	reply, err := careerService.Chat(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		logger.Debug("chat: %v", err)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, reply)
	}
	cmd.Println(reply.Response)
	return nil
}

func runRoadmap(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if err := ensureReady(cmd.Context()); err != nil {
		return err
	}

	company, role := args[0], args[1]
	items, err := careerService.Roadmap(cmd.Context(), company, role)
	if err != nil {
		return reportError(cmd, format, err)
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		if err := exportRoadmap(path, items); err != nil {
			return err
		}
		logger.Info("wrote %s", path)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, items)
	}
	renderRoadmap(cmd.OutOrStdout(), company, role, items)
	return nil
}

func runSkills(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	resume, err := readResume(cmd)
	if err != nil {
		return reportError(cmd, format, err)
	}
	if err := ensureReady(cmd.Context()); err != nil {
		return err
	}

	analysis, err := careerService.AnalyzeSkills(cmd.Context(), args[0], args[1], resume)
	if err != nil {
		return reportError(cmd, format, err)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, analysis)
	}
	renderSkills(cmd.OutOrStdout(), analysis)
	return nil
}

func runATS(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	resume, err := readResume(cmd)
	if err != nil {
		return reportError(cmd, format, err)
	}
	if err := ensureReady(cmd.Context()); err != nil {
		return err
	}

	report, err := careerService.AnalyzeATS(cmd.Context(), args[0], args[1], resume)
	if err != nil {
		return reportError(cmd, format, err)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, report)
	}
	renderATS(cmd.OutOrStdout(), report)
	return nil
}

func runExperiences(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if err := ensureReady(cmd.Context()); err != nil {
		return err
	}

	company := args[0]
	items, err := careerService.Experiences(cmd.Context(), company)
	if err != nil {
		return reportError(cmd, format, err)
	}
	if items == nil {
		items = []domain.Experience{}
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		if err := exportExperiences(path, items); err != nil {
			return err
		}
		logger.Info("wrote %s", path)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, items)
	}
	renderExperiences(cmd.OutOrStdout(), company, items)
	return nil
}

// readResume loads and decodes the --resume file.
func readResume(cmd *cobra.Command) (string, error) {
	if resumeDecoder == nil {
		return "", errors.New("resume decoder not configured")
	}
	path, err := cmd.Flags().GetString("resume")
	if err != nil {
		return "", fmt.Errorf("getting resume flag: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return resumeDecoder.Decode(cmd.Context(), filepath.Base(path), data)
}
