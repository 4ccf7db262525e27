package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/MyelinBots/heavenly-go/internal/app"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/auth"
	"github.com/spf13/cobra"
)

var errAborted = errors.New("aborted")

type prompter interface {
	Input(message string, validate survey.Validator) (string, error)
	Password(message string) (string, error)
	Select(message string, options []string, def string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message string, validate survey.Validator) (string, error) {
	var out string
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(validate))
	}
	err := survey.AskOne(&survey.Input{Message: message}, &out, opts...)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Password(message string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Password{Message: message}, &out, survey.WithValidator(survey.MinLength(8)))
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Select{Message: message, Options: options, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

func validEmail(v interface{}) error {
	s, _ := v.(string)
	if !auth.ValidEmail(user.NormalizeEmail(s)) {
		return auth.ErrInvalidEmail
	}
	return nil
}

var roleOptions = []string{
	string(user.RoleClient),
	string(user.RoleTherapist),
	string(user.RoleAdmin),
}

type userCreateInput struct {
	email    string
	password string
	role     string
	name     string
}

// complete prompts for every field that was not given as a flag.
func (in *userCreateInput) complete(p prompter) error {
	var err error
	if in.email == "" {
		if in.email, err = p.Input("Email", validEmail); err != nil {
			return err
		}
	}
	if in.password == "" {
		if in.password, err = p.Password("Password"); err != nil {
			return err
		}
	}
	if in.role == "" {
		if in.role, err = p.Select("Role", roleOptions, string(user.RoleClient)); err != nil {
			return err
		}
	}
	return nil
}

func newUserCmd(opts *rootOptions, p prompter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	in := &userCreateInput{}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account, prompting for anything not given as a flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.complete(p); err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			database, err := app.Open(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			a, err := app.New(cfg, database)
			if err != nil {
				return err
			}
			u, err := a.Services.Auth.CreateUser(cmd.Context(), auth.SignUpInput{
				Email:    in.email,
				Password: in.password,
				Role:     user.Role(in.role),
				Name:     in.name,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.email, "email", "", "account email")
	create.Flags().StringVar(&in.password, "password", "", "account password")
	create.Flags().StringVar(&in.role, "role", "", "CLIENT, THERAPIST or ADMIN")
	create.Flags().StringVar(&in.name, "name", "", "display name")

	cmd.AddCommand(create)
	return cmd
}
