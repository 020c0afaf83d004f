package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/adapters/driving/oauth"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// loginTimeout bounds how long login waits for the browser callback.
const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GitHub credential",
	Long: `Sign in to GitHub so Folio can list, merge and open pull requests.

Sign in through the browser with an OAuth app (oauth.client_id must be set),
with the device flow on machines without a browser, or by storing a
personal access token.

Examples:
  folio auth login
  folio auth login --device
  folio auth token
  folio auth status`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to GitHub with OAuth",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authTokenCmd = &cobra.Command{
	Use:   "token [token]",
	Short: "Store a personal access token",
	Long: `Store a personal access token. Without an argument the token is read
from the terminal without echo, or from stdin when it is not a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthToken,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var (
	authDevice    bool
	authPort      int
	authNoBrowser bool
)

func init() {
	authLoginCmd.Flags().BoolVar(&authDevice, "device", false, "use the device flow")
	authLoginCmd.Flags().IntVar(&authPort, "port", 8085, "first local port to try for the callback")
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the URL instead of opening a browser")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authTokenCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}

	var (
		creds *domain.Credentials
		err   error
	)
	if authDevice {
		creds, err = loginWithDevice(cmd)
	} else {
		creds, err = loginWithBrowser(cmd)
	}
	if err != nil {
		return err
	}
	cmd.Printf("Signed in as %s\n", accountName(creds))
	return nil
}

func loginWithBrowser(cmd *cobra.Command) (*domain.Credentials, error) {
	server, err := oauth.Listen(authPort, authPort+10)
	if err != nil {
		return nil, err
	}
	defer server.Close() //nolint:errcheck

	req, err := authService.StartAuthorization(server.RedirectURI())
	if err != nil {
		return nil, fmt.Errorf("start authorization: %w", err)
	}
	server.Expect(req.State)

	if authNoBrowser {
		cmd.Printf("Open this URL to sign in:\n\n  %s\n\n", req.URL)
	} else {
		cmd.Println("Opening the browser to sign in...")
		if err := oauth.OpenBrowser(req.URL); err != nil {
			cmd.Printf("Could not open a browser. Open this URL to sign in:\n\n  %s\n\n", req.URL)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	code, err := server.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for authorization: %w", err)
	}
	creds, err := authService.CompleteAuthorization(cmd.Context(), req, code)
	if err != nil {
		return nil, fmt.Errorf("complete authorization: %s", domain.UserMessage(err))
	}
	return creds, nil
}

func loginWithDevice(cmd *cobra.Command) (*domain.Credentials, error) {
	code, err := authService.StartDevice(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("start device flow: %s", domain.UserMessage(err))
	}

	cmd.Printf("Open %s and enter the code:\n\n  %s\n\n", code.VerificationURI, code.UserCode)
	cmd.Println("Waiting for approval...")

	creds, err := authService.CompleteDevice(cmd.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("device flow: %s", domain.UserMessage(err))
	}
	return creds, nil
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}

	token := ""
	if len(args) == 1 {
		token = args[0]
	} else {
		cmd.Print("Personal access token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token", domain.ErrMissingRequiredField)
	}

	creds, err := authService.SaveToken(cmd.Context(), token)
	if err != nil {
		return fmt.Errorf("store token: %s", domain.UserMessage(err))
	}
	cmd.Printf("Token stored for %s\n", accountName(creds))
	return nil
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}
	creds, err := authService.Current(cmd.Context())
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	if creds == nil {
		cmd.Println("Not signed in. Run 'folio auth login' or 'folio auth token'.")
		return nil
	}

	cmd.Printf("Account: %s\n", accountName(creds))
	cmd.Printf("Method:  %s\n", creds.Method)
	cmd.Printf("Token:   %s\n", maskSecret(creds.AccessToken()))
	if creds.OAuth != nil && !creds.OAuth.Expiry.IsZero() {
		state := "valid"
		if creds.OAuth.IsExpired() {
			state = "expired"
		}
		cmd.Printf("Expires: %s (%s)\n", creds.OAuth.Expiry.Format("2006-01-02 15:04"), state)
	}
	cmd.Printf("Updated: %s\n", creds.UpdatedAt.Format("2006-01-02 15:04"))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}
	if err := authService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	cmd.Println("Signed out.")
	return nil
}

func accountName(c *domain.Credentials) string {
	if c == nil || c.AccountIdentifier == "" {
		return "unknown account"
	}
	return c.AccountIdentifier
}
