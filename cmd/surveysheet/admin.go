package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"

	"github.com/pavelanni/surveysheet/internal/model"
)

func surveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Manage surveys",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a survey",
		RunE:  runSurveyCreate,
	}
	commonFlags(create.Flags())
	create.Flags().String("title", "", "Survey title (required)")
	create.Flags().StringSlice("languages", nil, "Survey languages, base language first (required)")
	create.Flags().Bool("unknown-attrs", false, "Store attributes missing from the attribute schema on import")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("languages")

	list := &cobra.Command{
		Use:   "list",
		Short: "List surveys as JSON",
		RunE:  runSurveyList,
	}
	commonFlags(list.Flags())

	set := &cobra.Command{
		Use:   "set",
		Short: "Change survey settings",
		RunE:  runSurveySet,
	}
	commonFlags(set.Flags())
	set.Flags().Int64P("survey", "s", 0, "Survey ID (required)")
	set.Flags().Bool("active", false, "Mark the survey active (imports are then restricted)")
	set.Flags().Bool("unknown-attrs", false, "Store attributes missing from the attribute schema on import")
	set.Flags().StringSlice("languages", nil, "Survey languages, base language first")
	_ = set.MarkFlagRequired("survey")

	cmd.AddCommand(create, list, set)
	return cmd
}

func operatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage HTTP operators",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create an operator",
		RunE:  runOperatorAdd,
	}
	commonFlags(add.Flags())
	add.Flags().String("username", "", "Operator username (required)")
	add.Flags().String("password", "", "Operator password (required)")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:   "list",
		Short: "List operators as JSON",
		RunE:  runOperatorList,
	}
	commonFlags(list.Flags())

	set := &cobra.Command{
		Use:   "set-active USERNAME true|false",
		Short: "Enable or disable an operator",
		Args:  cobra.ExactArgs(2),
		RunE:  runOperatorSetActive,
	}
	commonFlags(set.Flags())

	cmd.AddCommand(add, list, set)
	return cmd
}

func importsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List recorded imports of a survey as JSON",
		RunE:  runImports,
	}
	f := cmd.Flags()
	commonFlags(f)
	f.Int64P("survey", "s", 0, "Survey ID (required)")
	f.Int("limit", 10, "Maximum number of runs (0 = all)")
	_ = cmd.MarkFlagRequired("survey")
	return cmd
}

// parseLanguages validates BCP 47 tags and returns them in canonical form.
func parseLanguages(raw []string) ([]string, error) {
	var langs []string
	seen := make(map[string]bool)
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		tag, err := language.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", r, err)
		}
		s := tag.String()
		if seen[s] {
			return nil, fmt.Errorf("duplicate language %q", s)
		}
		seen[s] = true
		langs = append(langs, s)
	}
	if len(langs) == 0 {
		return nil, errors.New("at least one language is required")
	}
	return langs, nil
}

func runSurveyCreate(cmd *cobra.Command, _ []string) error {
	v, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	langs, err := parseLanguages(v.GetStringSlice("languages"))
	if err != nil {
		return err
	}
	sv := model.Survey{
		Title:                   v.GetString("title"),
		Languages:               langs,
		ImportUnknownAttributes: v.GetBool("unknown-attrs"),
	}
	sv.ID, err = db.CreateSurvey(sv)
	if err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), sv)
}

func runSurveyList(cmd *cobra.Command, _ []string) error {
	_, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	surveys, err := db.ListSurveys()
	if err != nil {
		return fmt.Errorf("list surveys: %w", err)
	}
	if surveys == nil {
		surveys = []model.Survey{}
	}
	return printJSON(cmd.OutOrStdout(), surveys)
}

func runSurveySet(cmd *cobra.Command, _ []string) error {
	v, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id := v.GetInt64("survey")
	flags := cmd.Flags()
	if flags.Changed("active") {
		if err := db.SetSurveyActive(id, v.GetBool("active")); err != nil {
			return fmt.Errorf("set active: %w", err)
		}
	}
	if flags.Changed("unknown-attrs") {
		if err := db.SetImportUnknownAttributes(id, v.GetBool("unknown-attrs")); err != nil {
			return fmt.Errorf("set unknown-attrs: %w", err)
		}
	}
	if flags.Changed("languages") {
		langs, err := parseLanguages(v.GetStringSlice("languages"))
		if err != nil {
			return err
		}
		if err := db.SetSurveyLanguages(id, langs); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}

	sv, err := db.GetSurvey(id)
	if err != nil {
		return fmt.Errorf("load survey: %w", err)
	}
	if sv == nil {
		return fmt.Errorf("survey %d not found", id)
	}
	slog.Info("survey updated", "id", id)
	return printJSON(cmd.OutOrStdout(), sv)
}

func runOperatorAdd(cmd *cobra.Command, _ []string) error {
	v, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(v.GetString("password")), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	op := model.Operator{Username: v.GetString("username"), PasswordHash: string(hash), Active: true}
	op.ID, err = db.CreateOperator(op)
	if err != nil {
		return fmt.Errorf("create operator: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), op)
}

func runOperatorList(cmd *cobra.Command, _ []string) error {
	_, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ops, err := db.ListOperators()
	if err != nil {
		return fmt.Errorf("list operators: %w", err)
	}
	if ops == nil {
		ops = []model.Operator{}
	}
	return printJSON(cmd.OutOrStdout(), ops)
}

func runOperatorSetActive(cmd *cobra.Command, args []string) error {
	_, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	var active bool
	switch strings.ToLower(args[1]) {
	case "true", "1", "yes":
		active = true
	case "false", "0", "no":
	default:
		return fmt.Errorf("invalid active value %q", args[1])
	}
	if err := db.SetOperatorActive(args[0], active); err != nil {
		return fmt.Errorf("update operator %s: %w", args[0], err)
	}
	return nil
}

func runImports(cmd *cobra.Command, _ []string) error {
	v, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListImports(v.GetInt64("survey"), v.GetInt("limit"))
	if err != nil {
		return fmt.Errorf("list imports: %w", err)
	}
	if runs == nil {
		runs = []model.ImportRun{}
	}
	return printJSON(cmd.OutOrStdout(), runs)
}
