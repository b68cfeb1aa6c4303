package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"AIFitnessCoach/internal/catalog"
	"AIFitnessCoach/internal/config"
	"AIFitnessCoach/internal/database"
	"AIFitnessCoach/internal/geminiservice"
	"AIFitnessCoach/internal/plan"
	"AIFitnessCoach/internal/utility"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cliEnv holds the pieces the commands reach outside the process for.
type cliEnv struct {
	loadConfig    func() (*config.Config, error)
	openDB        func(ctx context.Context, url string) (database.Service, error)
	countrySource func() config.CountrySource
}

func defaultEnv() cliEnv {
	return cliEnv{
		loadConfig:    config.Load,
		openDB:        database.NewService,
		countrySource: config.LoadCountrySource,
	}
}

func newRootCmd(env cliEnv) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "fitcoach",
		Short:         "Generate personalised workout and diet plans",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			utility.SetupLogger(cmd.ErrOrStderr(), level, true)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(newPromptCmd(), newPlanCmd(env), newCountriesCmd(env))
	return root
}

// --- prompt ---

func newPromptCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt a profile would send",
		Long: `Print the prompt a profile would send. Nothing leaves the machine.

Examples:
  fitcoach prompt --profile ./me.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := readProfile(cmd.InOrStdin(), profilePath)
			if err != nil {
				return err
			}
			if err := plan.Validate(profile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plan.BuildPrompt(profile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// --- plan ---

func newPlanCmd(env cliEnv) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a plan for a profile",
		Long: `Validate a profile, send it to the model and print the plan markdown as received.

Examples:
  fitcoach plan --profile ./me.json > plan.md
  cat me.json | fitcoach plan --profile -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := readProfile(cmd.InOrStdin(), profilePath)
			if err != nil {
				return err
			}
			// Refuse locally before touching the config or the network.
			if err := plan.Validate(profile); err != nil {
				return err
			}

			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}

			logger := log.Logger
			client := geminiservice.NewClient(cfg.Gemini.Settings(), &logger)
			svc := plan.NewService(client, &logger)

			result, err := svc.Submit(cmd.Context(), profile)
			if err != nil {
				return describeError(err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "BMI: %d\n", result.BMI)
			fmt.Fprint(cmd.OutOrStdout(), result.Text)
			if !strings.HasSuffix(result.Text, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// --- countries ---

func newCountriesCmd(env cliEnv) *cobra.Command {
	var (
		csvPath     string
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List the countries offered by the form",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := env.countrySource()
			if csvPath == "" {
				csvPath = source.CountriesCSV
			}
			if databaseURL == "" {
				databaseURL = source.DatabaseURL
			}

			var q catalog.Querier
			if databaseURL != "" {
				db, err := env.openDB(cmd.Context(), databaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				q = db.Pool()
			}

			cat, err := catalog.Load(cmd.Context(), csvPath, q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range cat.Countries() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "country CSV file (default $COUNTRIES_CSV or data/countries.csv)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "read countries from PostgreSQL instead (default $DATABASE_URL)")
	return cmd
}

// --- helpers ---

func readProfile(stdin io.Reader, path string) (plan.UserProfile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return plan.UserProfile{}, fmt.Errorf("reading profile: %w", err)
	}

	var profile plan.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return plan.UserProfile{}, fmt.Errorf("parsing profile: %w", err)
	}
	return profile, nil
}

// describeError prefixes service failures with a hint about what to do next.
func describeError(err error) error {
	var serr *geminiservice.ServiceError
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Kind {
	case geminiservice.KindAuth:
		return fmt.Errorf("check GEMINI_API_KEY: %w", err)
	case geminiservice.KindContentFiltered:
		return fmt.Errorf("blocked by safety filters, review the profile text: %w", err)
	case geminiservice.KindRateLimited, geminiservice.KindTransient:
		return fmt.Errorf("service unavailable, try again later: %w", err)
	}
	return err
}
