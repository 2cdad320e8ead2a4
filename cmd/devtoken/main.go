// Command devtoken mints a session token for local development. Real tokens
// come from the identity provider; the API only verifies them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Windi-Fikriyansyah/gigflow/internal/utils"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string, out io.Writer) error {
	var (
		userID  string
		minutes int
	)
	defaultMinutes := 10080
	if v, err := strconv.Atoi(getenv("JWT_EXPIRES_MIN")); err == nil && v > 0 {
		defaultMinutes = v
	}

	flagSet := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&userID, "user", "u", "", "user id to embed (default: a new random id)")
	flagSet.IntVarP(&minutes, "minutes", "m", defaultMinutes, "token lifetime in minutes")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	secret := getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if userID == "" {
		userID = uuid.NewString()
	} else if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("--user must be a uuid: %w", err)
	}
	if minutes <= 0 {
		return errors.New("--minutes must be positive")
	}

	token, err := utils.SignJWT(secret, userID, minutes)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "user:  %s\ntoken: %s\n", userID, token)
	return nil
}
