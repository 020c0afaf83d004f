package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var submitCmd = &cobra.Command{
	Use:   "submit <type> <slug>",
	Short: "Propose an edit to a post as a pull request",
	Long: `Propose an edit to a content file. The change is committed to a new branch
and opened as a pull request for review; the published file is untouched
until the pull request is merged.

Examples:
  folio submit posts hello --title "Hello, world"
  folio submit posts hello --body-file edited.md -m "Fix typo"
  cat edited.md | folio submit posts hello --body-file -`,
	Args: cobra.ExactArgs(2),
	RunE: runSubmit,
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions [login]",
	Short: "List open submissions",
	Long:  `List the open pull requests authored by login, or by the signed-in account.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSubmissions,
}

var (
	submitTitle    string
	submitBodyFile string
	submitMessage  string
	submitLogin    string
)

func init() {
	submitCmd.Flags().StringVarP(&submitTitle, "title", "t", "", "new title")
	submitCmd.Flags().StringVarP(&submitBodyFile, "body-file", "f", "", "file holding the new body (- for stdin)")
	submitCmd.Flags().StringVarP(&submitMessage, "message", "m", "", "description of the change")
	submitCmd.Flags().StringVar(&submitLogin, "login", "", "submitting login (default: signed-in account)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(submissionsCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if submissionService == nil {
		return errNotConfigured("submission service")
	}

	req := domain.SubmitRequest{
		Type:    args[0],
		Slug:    args[1],
		Title:   submitTitle,
		Message: submitMessage,
	}
	if submitBodyFile != "" {
		body, err := readBody(cmd, submitBodyFile)
		if err != nil {
			return err
		}
		req.Body = body
	}

	login, err := resolveLogin(cmd, submitLogin)
	if err != nil {
		return err
	}
	req.Login = login

	return printResult(cmd, submissionService.Submit(cmd.Context(), req))
}

func readBody(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// resolveLogin falls back to the account of the stored credential.
func resolveLogin(cmd *cobra.Command, login string) (string, error) {
	if login != "" {
		return login, nil
	}
	if authService == nil {
		return "", fmt.Errorf("%w: --login is required", domain.ErrMissingRequiredField)
	}
	creds, err := authService.Current(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	if creds == nil || creds.AccountIdentifier == "" {
		return "", fmt.Errorf("%w: sign in with 'folio auth login' or pass --login", domain.ErrMissingRequiredField)
	}
	return creds.AccountIdentifier, nil
}

func runSubmissions(cmd *cobra.Command, args []string) error {
	if submissionService == nil {
		return errNotConfigured("submission service")
	}
	login := ""
	if len(args) == 1 {
		login = args[0]
	}
	login, err := resolveLogin(cmd, login)
	if err != nil {
		return err
	}

	prs, err := submissionService.List(cmd.Context(), login)
	if err != nil {
		return fmt.Errorf("list submissions: %s", domain.UserMessage(err))
	}
	printPullRequests(cmd, prs)
	return nil
}
