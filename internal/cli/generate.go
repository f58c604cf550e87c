package cli

import (
	"context"
	"strings"

	"interviewprep/internal/backend"
	"interviewprep/internal/common"
	"interviewprep/internal/errors"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [cv-file]",
	Short: "Generate interview questions for a CV",
	Long: `Analyze a CV, then generate interview questions for it.

All detected skills are selected unless --skill or --exclude-skill narrow the
selection. Skill names are matched case-insensitively against the detected
ones; unknown names are ignored with a warning.

Examples:
  interviewprep generate cv.pdf --experience experienced --range 5-8
  interviewprep generate cv.pdf --type Programming --skill Go --skill SQL
  interviewprep generate cv.pdf --job-description-file job.txt -o questions.xlsx`,
	Args:    cobra.ExactArgs(1),
	PreRunE: generatePreRun,
	RunE:    runGenerate,
}

// wizardFlags are the configuration flags shared by generate and upload
type wizardFlags struct {
	experience   string
	yearsRange   string
	questionType string
	jobDescFile  string
	skills       []string
	excluded     []string

	level types.ExperienceLevel
	rng   types.ExperienceRange
	qtype types.QuestionType
}

var (
	generateConfig common.CommandConfig
	generateFlags  wizardFlags
)

func init() {
	addOutputFlags(generateCmd, &generateConfig)
	addExperienceFlags(generateCmd, &generateFlags)
	generateCmd.Flags().StringVar(&generateFlags.questionType, "type", "Mixed", "Question type: Mixed, Programming or Theoretical")
	generateCmd.Flags().StringVar(&generateFlags.jobDescFile, "job-description-file", "", "File with the job description ('-' for stdin)")
	generateCmd.Flags().StringArrayVar(&generateFlags.skills, "skill", nil, "Only keep this detected skill (repeatable)")
	generateCmd.Flags().StringArrayVar(&generateFlags.excluded, "exclude-skill", nil, "Drop this detected skill (repeatable)")
}

func addExperienceFlags(cmd *cobra.Command, f *wizardFlags) {
	cmd.Flags().StringVar(&f.experience, "experience", "fresher", "Experience level: fresher or experienced")
	cmd.Flags().StringVar(&f.yearsRange, "range", string(types.Range2To5), "Years of experience: 2-5, 5-8, 8-10, 10-15 or >15")
}

// parseExperience validates the experience flags. A --range on its own
// implies an experienced candidate.
func (f *wizardFlags) parseExperience(cmd *cobra.Command) error {
	level, err := types.ParseExperienceLevel(f.experience)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), nil)
	}
	rng, err := types.ParseExperienceRange(f.yearsRange)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), nil)
	}
	if cmd.Flags().Changed("range") && !cmd.Flags().Changed("experience") {
		level = types.Experienced
	}
	f.level, f.rng = level, rng
	return nil
}

func generatePreRun(cmd *cobra.Command, args []string) error {
	if err := outputPreRun(&generateConfig)(cmd, args); err != nil {
		return err
	}
	if err := generateFlags.parseExperience(cmd); err != nil {
		return err
	}
	q, err := types.ParseQuestionType(generateFlags.questionType)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), nil)
	}
	generateFlags.qtype = q
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	var jobDescription string
	if generateFlags.jobDescFile != "" {
		jobDescription, err = common.NewFileProcessor(logger).WithStdin(cmd.InOrStdin()).ReadFile(generateFlags.jobDescFile)
		if err != nil {
			return err
		}
	}

	om, shutdown, err := startObservability(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()
	client := backend.NewClient(cfg.Backend, logger, om)

	return common.RunCommandTo(cmd.Context(), common.NewOutputHandlerWithWriter(logger, cmd.OutOrStdout()),
		logger, generateConfig, "generate",
		func(ctx context.Context) (types.QuestionSet, error) {
			ctrl, err := analyzedWizard(ctx, cfg, logger, client, args[0])
			if err != nil {
				return types.QuestionSet{}, err
			}
			if err := configureWizard(ctrl, generateFlags, jobDescription, logger); err != nil {
				return types.QuestionSet{}, err
			}

			res := ctrl.Generate(ctx).Result()
			if !res.OK() {
				return types.QuestionSet{}, userFailure(res.Value.Error, res.Err)
			}
			st := res.Value
			return types.QuestionSet{
				File:           st.File.Name,
				Experience:     st.Experience.Descriptor(),
				QuestionType:   string(st.QuestionType),
				JobDescription: st.JobDescription != "",
				SelectedSkills: st.Selected,
				Questions:      st.Questions,
			}, nil
		})
}

// configureWizard applies the flags to a controller in the Configuring stage
func configureWizard(ctrl *wizard.Controller, f wizardFlags, jobDescription string, logger *errors.Logger) error {
	if _, err := ctrl.SetExperience(f.level, f.rng); err != nil {
		return err
	}
	if _, err := ctrl.SetQuestionType(f.qtype); err != nil {
		return err
	}
	ctrl.SetJobDescription(strings.TrimSpace(jobDescription))

	st := ctrl.State()
	for _, name := range append(append([]string{}, f.skills...), f.excluded...) {
		if matchSkill(st.Skills, name) == "" {
			logger.Warn("Skill not detected in CV, ignoring", "skill", name)
		}
	}

	for _, skill := range st.Skills {
		keep := len(f.skills) == 0 || matchSkill(f.skills, skill) != ""
		if matchSkill(f.excluded, skill) != "" {
			keep = false
		}
		if !keep && st.IsSelected(skill) {
			st = ctrl.ToggleSkill(skill)
		}
	}
	return nil
}

// matchSkill returns the entry of names equal to skill ignoring case, or ""
func matchSkill(names []string, skill string) string {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), skill) {
			return n
		}
	}
	return ""
}
