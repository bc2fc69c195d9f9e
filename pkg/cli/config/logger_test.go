package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/cli/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	t.Run("json to file redacts bearer tokens", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("request", "header", "Bearer abc.def.ghi", "model_id", "md-1")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		out := string(data)
		gt.Bool(t, strings.Contains(out, `"model_id":"md-1"`)).True()
		gt.Bool(t, strings.Contains(out, "abc.def.ghi")).False()
	})

	t.Run("console", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("warn", "console", "stderr").Configure()
		gt.NoError(t, err)
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stdout").Configure()
		gt.Error(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err)
	})
}
