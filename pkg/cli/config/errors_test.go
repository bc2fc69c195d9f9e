package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []error{
		config.ErrConfigNotFound,
		config.ErrInvalidConfig,
		config.ErrDuplicateLOB,
		config.ErrDuplicateProductType,
		config.ErrInvalidLOB,
		config.ErrInvalidProductType,
		config.ErrInvalidMeasurementModel,
		config.ErrUnknownSection,
		config.ErrMissingName,
	}

	for i, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := goerr.Wrap(sentinel, "wrapped", goerr.V(config.IndexKey, i))
			gt.Error(t, wrapped).Is(sentinel)

			for j, other := range sentinels {
				if i != j {
					gt.Bool(t, errors.Is(wrapped, other)).False()
				}
			}
		})
	}
}

func TestConfigErrors_ContextValues(t *testing.T) {
	err := goerr.Wrap(config.ErrDuplicateLOB, "duplicate",
		goerr.V(config.ConfigPathKey, "/etc/catalog.toml"),
		goerr.V(config.LOBKey, "TERM_LIFE"),
	)

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	values := ge.Values()
	gt.Value(t, values[config.ConfigPathKey]).Equal(any("/etc/catalog.toml"))
	gt.Value(t, values[config.LOBKey]).Equal(any("TERM_LIFE"))
}
