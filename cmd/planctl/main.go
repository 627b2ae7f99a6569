package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/llm"
	"github.com/fyerfyer/travel-plan/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd 构造命令行入口
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "planctl",
		Short:        "Inspect and parse AI-generated travel plans",
		SilenceUsage: true,
	}
	root.AddCommand(newParseCmd(), newPromptCmd(), newQuestionsCmd())
	return root
}

func newParseCmd() *cobra.Command {
	var (
		plain  bool
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse raw plan text into a structured document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logrus.WarnLevel)

			opts := []document.Option{document.WithLogger(logger)}
			if plain {
				opts = append(opts, document.WithPlainText())
			}

			doc, err := document.NewParser(opts...).SafeParse(raw)
			if err != nil {
				// 解析失败时原样输出，退出码为0
				fmt.Fprintln(cmd.OutOrStdout(), document.FallbackNotice)
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprint(cmd.OutOrStdout(), raw)
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(doc)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Strip inline markdown from items")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Indent JSON output")
	return cmd
}

func newPromptCmd() *cobra.Command {
	var answers []string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the generation prompt for the given answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cleaned, err := services.ValidateAnswers(answers)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), llm.BuildPlanPrompt(cleaned))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "Questionnaire answer (repeatable, in question order)")
	return cmd
}

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the questionnaire",
		Run: func(cmd *cobra.Command, _ []string) {
			for i, q := range services.Questions {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, q.Text)
			}
		},
	}
}

// readInput 从文件或标准输入读取计划文本
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
