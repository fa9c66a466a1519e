package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/memoria/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getSecret prompts on w and reads a line without echo when stdin is a
// terminal, or a plain line otherwise.
var getSecret = func(in io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := readLine(in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readLine reads up to the first newline byte by byte so nothing past it is
// consumed.
func readLine(in io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
	}
}

func newLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the session token issued by the auth provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			if token == "" {
				var err error
				token, err = getSecret(a.in, a.out, "Session token: ")
				if err != nil {
					return err
				}
			}
			if token == "" {
				return errors.New("empty token")
			}

			a.api.SetToken(token)
			if _, err := a.api.Stats(ctx); err != nil {
				if errors.Is(err, common.ErrorUnauthorized) {
					return errors.New("the server rejected the token")
				}
				return err
			}

			if err := a.meta.Set(ctx, metadata.KeyAccessToken, token); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token value (prompted when omitted)")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token and the current draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.meta.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}
