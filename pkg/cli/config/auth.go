package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// minSecretLength is the HS256 key size
const minSecretLength = 32

// Auth holds CLI flags for bearer token authentication
type Auth struct {
	secret    string
	issuer    string
	noAuthn   bool
	noAuthnID string
}

func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HMAC secret used to sign and verify bearer tokens",
			Sources:     cli.EnvVars("IFRS_MODELER_JWT_SECRET"),
			Destination: &a.secret,
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Expected issuer of bearer tokens",
			Value:       usecase.DefaultIssuer,
			Sources:     cli.EnvVars("IFRS_MODELER_JWT_ISSUER"),
			Destination: &a.issuer,
		},
		&cli.BoolFlag{
			Name:        "no-authn",
			Usage:       "Disable authentication (development only)",
			Sources:     cli.EnvVars("IFRS_MODELER_NO_AUTHN"),
			Destination: &a.noAuthn,
		},
		&cli.StringFlag{
			Name:        "no-authn-user",
			Usage:       "User ID recorded on changes when authentication is disabled",
			Sources:     cli.EnvVars("IFRS_MODELER_NO_AUTHN_USER"),
			Destination: &a.noAuthnID,
		},
	}
}

func (a *Auth) Validate() error {
	if a.noAuthn {
		return nil
	}
	if a.secret == "" {
		return goerr.New("jwt-secret is required unless --no-authn is set")
	}
	if len(a.secret) < minSecretLength {
		return goerr.New("jwt-secret is too short", goerr.V("min_length", minSecretLength))
	}
	return nil
}

// Configure returns the auth use case for the server
func (a *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if a.noAuthn {
		logging.Default().Warn("Authentication is disabled", "user", a.noAuthnID)
		return usecase.NewNoAuthnUseCase(a.noAuthnID, "", ""), nil
	}

	logging.Default().Info("Bearer token authentication enabled", "issuer", a.issuer)
	return a.Issuer()
}

// Issuer returns the token issuing use case. It always requires a secret.
func (a *Auth) Issuer() (*usecase.AuthUseCase, error) {
	if a.secret == "" {
		return nil, goerr.New("jwt-secret is required")
	}
	if len(a.secret) < minSecretLength {
		return nil, goerr.New("jwt-secret is too short", goerr.V("min_length", minSecretLength))
	}
	return usecase.NewAuthUseCase([]byte(a.secret), usecase.WithIssuer(a.issuer)), nil
}
