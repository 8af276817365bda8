package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metalogic-lab/metadiag/internal/engine"
	"github.com/metalogic-lab/metadiag/internal/model"
	"github.com/metalogic-lab/metadiag/internal/report"
	"github.com/metalogic-lab/metadiag/internal/store"
	"github.com/metalogic-lab/metadiag/internal/wizard"
)

var (
	wizProvider string
	wizModel    string
	wizReset    bool
	wizOutDir   string
)

// wizardCmd runs the interactive five-step questionnaire with resume support.
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive diagnosis wizard",
	Long: `Wizard walks through the five questionnaire steps, persisting progress
after every answer. Quitting mid-flow and running the command again resumes
at the exact step with all answers restored.

Controls: enter the number of an option, 'b' for the previous step,
'r' to restart, 'q' to quit (progress is kept).`,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)

	wizardCmd.Flags().StringVar(&wizProvider, "engine", "", "analysis engine (rules, openai; default rules)")
	wizardCmd.Flags().StringVar(&wizModel, "model", "", "model name for the openai engine")
	wizardCmd.Flags().BoolVar(&wizReset, "reset", false, "discard the saved session and start over")
	wizardCmd.Flags().StringVar(&wizOutDir, "output-dir", ".", "directory for exported reports")
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if wizProvider != "" {
		cfg.Engine.Provider = wizProvider
	}
	if wizModel != "" {
		cfg.Engine.Model = wizModel
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	st := store.NewFileStore(cfg.Storage.Dir)
	ctrl := wizard.NewController(st, eng, wizard.WithTimeout(cfg.Engine.Timeout))
	if wizReset {
		if err := ctrl.Restart(); err != nil {
			return err
		}
	}

	session := &wizardSession{
		ctrl:     ctrl,
		renderer: report.NewRenderer(cfg.Output.IncludeFooter),
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		outDir:   wizOutDir,
	}
	return session.run(context.Background())
}

// wizardSession is the terminal front end over the controller. It only reads
// controller state and issues transitions; all rules live in the controller.
type wizardSession struct {
	ctrl     *wizard.Controller
	renderer *report.Renderer
	in       *bufio.Scanner
	out      io.Writer
	outDir   string
}

func (s *wizardSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "元逻辑诊断 — 基于第一性原理的企业数字化诊断")

	for {
		state := s.ctrl.State()
		switch state.Phase {
		case model.PhaseForm:
			done, err := s.stepPrompt(ctx, state)
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		case model.PhaseLoading:
			// A previous submission failed; offer a retry.
			if lastErr := s.ctrl.LastError(); lastErr != nil {
				fmt.Fprintf(s.out, "\n诊断失败: %v\n", lastErr)
			}
			answer := s.prompt("重试分析? [y/n] ")
			if !strings.EqualFold(answer, "y") {
				return nil
			}
			if err := s.ctrl.Retry(ctx); err != nil {
				continue
			}

		case model.PhaseResult:
			rep := s.ctrl.Report()
			if rep == nil {
				// Restored into the result phase from a previous session; the
				// report itself is not persisted, so a fresh analysis is needed.
				fmt.Fprintln(s.out, "报告需要重新生成，请返回表单重新提交。")
				if err := s.ctrl.BackToForm(); err != nil {
					return err
				}
				continue
			}
			s.renderer.Summary(s.out, rep)
			fmt.Fprintln(s.out, "\n[u] 解锁完整破局报告  [b] 返回表单  [q] 退出")
			switch strings.ToLower(s.prompt("> ")) {
			case "u":
				if err := s.ctrl.Unlock(); err != nil {
					fmt.Fprintln(s.out, err)
				}
			case "b":
				if err := s.ctrl.BackToForm(); err != nil {
					fmt.Fprintln(s.out, err)
				}
			case "q":
				return nil
			}

		case model.PhaseReport:
			return s.exportReport(state)
		}
	}
}

// stepPrompt renders one questionnaire step and applies the user's input.
// Returns done=true when the user quits.
func (s *wizardSession) stepPrompt(ctx context.Context, state model.WizardState) (bool, error) {
	fmt.Fprintf(s.out, "\n—— 第 %d/%d 步 ——\n", state.CurrentStep, model.TotalSteps)

	switch state.CurrentStep {
	case 1:
		fmt.Fprintln(s.out, "选择您的行业:")
		for i, v := range model.Industries {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, v)
		}
	case 2:
		fmt.Fprintln(s.out, "请选择贵公司的年营收规模:")
		for i, v := range model.RevenueScales {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, v)
		}
	case 3:
		fmt.Fprintln(s.out, "请选择核心痛点（输入序号切换选中，空行继续）:")
		for i, v := range model.PainPoints {
			mark := " "
			if state.Answers.HasPainPoint(v) {
				mark = "x"
			}
			fmt.Fprintf(s.out, "  [%s] %d. %s\n", mark, i+1, v)
		}
	case 4:
		fmt.Fprintf(s.out, "线上渠道占比（0-100，当前 %d%%，空行继续）:\n", state.Answers.OnlineRatio)
	case 5:
		fmt.Fprintln(s.out, "请选择贵公司近一年的利润趋势:")
		for i, v := range model.ProfitTrends {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, v)
		}
	}

	input := s.prompt("> ")
	switch strings.ToLower(input) {
	case "q":
		fmt.Fprintln(s.out, "进度已保存，下次运行自动恢复。")
		return true, nil
	case "b":
		if err := s.ctrl.Retreat(); err != nil {
			fmt.Fprintln(s.out, err)
		}
		return false, nil
	case "r":
		if err := s.ctrl.Restart(); err != nil {
			fmt.Fprintln(s.out, err)
		}
		return false, nil
	}

	stay, err := s.applyInput(state.CurrentStep, input)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return false, nil
	}
	if stay {
		return false, nil
	}

	if state.CurrentStep == model.TotalSteps {
		fmt.Fprintln(s.out, "\n正在生成诊断报告……")
	}
	if err := s.ctrl.Advance(ctx); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) || errors.Is(err, engine.ErrAnalysisUnavailable) {
			fmt.Fprintln(s.out, err)
			return false, nil
		}
		return false, err
	}
	return false, nil
}

// applyInput maps the raw line to the mutator of the current step. An empty
// line means "keep the current value and advance". stay=true keeps the prompt
// on the current step (pain-point toggling).
func (s *wizardSession) applyInput(step int, input string) (stay bool, err error) {
	if input == "" {
		return false, nil
	}

	switch step {
	case 1:
		idx, err := parseChoice(input, len(model.Industries))
		if err != nil {
			return false, err
		}
		return false, s.ctrl.SetIndustry(model.Industries[idx])
	case 2:
		idx, err := parseChoice(input, len(model.RevenueScales))
		if err != nil {
			return false, err
		}
		return false, s.ctrl.SetRevenueScale(model.RevenueScales[idx])
	case 3:
		// Toggling keeps the user on the step; advance happens on empty input.
		for _, field := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' }) {
			idx, err := parseChoice(field, len(model.PainPoints))
			if err != nil {
				return true, err
			}
			if err := s.ctrl.TogglePainPoint(model.PainPoints[idx]); err != nil {
				return true, err
			}
		}
		return true, nil
	case 4:
		ratio, err := strconv.Atoi(input)
		if err != nil {
			return false, fmt.Errorf("请输入 0-100 之间的整数")
		}
		return false, s.ctrl.SetOnlineRatio(ratio)
	case 5:
		idx, err := parseChoice(input, len(model.ProfitTrends))
		if err != nil {
			return false, err
		}
		return false, s.ctrl.SetProfitTrend(model.ProfitTrends[idx])
	}
	return false, nil
}

func (s *wizardSession) exportReport(state model.WizardState) error {
	rep := s.ctrl.Report()
	if rep == nil {
		// Restored into the report phase from a previous session; the report
		// itself is not persisted, so a fresh analysis is needed.
		fmt.Fprintln(s.out, "报告需要重新生成，请返回表单重新提交。")
		return s.ctrl.BackToForm()
	}

	jsonPath := filepath.Join(s.outDir, "diagnosis-report.json")
	mdPath := filepath.Join(s.outDir, "diagnosis-report.md")
	if err := s.renderer.RenderJSON(rep, state.Answers, jsonPath); err != nil {
		return err
	}
	if err := s.renderer.RenderMarkdown(rep, state.Answers, mdPath); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\n深度诊断报告已导出:\n  %s\n  %s\n", jsonPath, mdPath)
	return nil
}

func (s *wizardSession) prompt(label string) string {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "q"
	}
	return strings.TrimSpace(s.in.Text())
}

func parseChoice(input string, max int) (int, error) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("请输入 1-%d 之间的序号", max)
	}
	return n - 1, nil
}
