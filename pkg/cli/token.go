package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ifrs-modeler/pkg/cli/config"
)

func cmdToken() *cli.Command {
	var subject string
	var email string
	var name string
	var ttl time.Duration
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "subject",
			Aliases:     []string{"sub"},
			Usage:       "User ID carried by the token",
			Required:    true,
			Destination: &subject,
		},
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Email claim",
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name claim",
			Destination: &name,
		},
		&cli.DurationFlag{
			Name:        "ttl",
			Usage:       "Token lifetime",
			Value:       12 * time.Hour,
			Destination: &ttl,
		},
	}
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the API (development and automation)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if ttl <= 0 {
				return goerr.New("ttl must be positive", goerr.V("ttl", ttl))
			}

			issuer, err := authCfg.Issuer()
			if err != nil {
				return err
			}

			token, err := issuer.IssueToken(subject, email, name, ttl)
			if err != nil {
				return goerr.Wrap(err, "failed to issue token", goerr.V("subject", subject))
			}

			_, err = fmt.Fprintln(c.Root().Writer, token)
			return err
		},
	}
}
