package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/m-mizutani/llvmpack/pkg/domain/model"
	"github.com/m-mizutani/llvmpack/pkg/utils/retry"
)

// File is the optional TOML configuration for settings that rarely change
// per invocation: mirror URL templates, the target repository name and retry
// tuning. Flag and environment sources stay authoritative for everything
// else.
type File struct {
	Mirror model.Mirror `toml:"mirror"`
	GitHub struct {
		Repo string `toml:"repo"`
	} `toml:"github"`
	Retry struct {
		MaxRetries      int `toml:"max_retries"`
		IntervalSeconds int `toml:"interval_seconds"`
	} `toml:"retry"`
}

// DefaultFile returns the built-in configuration: llvm.org mirrors, the
// "llvm" repository and the standard retry policy.
func DefaultFile() File {
	var f File
	f.Mirror = model.DefaultMirror()
	f.GitHub.Repo = "llvm"
	f.Retry.MaxRetries = retry.DefaultMaxRetries
	f.Retry.IntervalSeconds = int(retry.DefaultInterval / time.Second)
	return f
}

// LoadFile reads the TOML file at path over the defaults. An empty path
// returns the defaults unchanged.
func LoadFile(path string) (File, error) {
	f := DefaultFile()
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return f, nil
}

// RetryOptions translates the retry section into retry.Do options
func (f File) RetryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(f.Retry.MaxRetries),
		retry.WithInterval(time.Duration(f.Retry.IntervalSeconds) * time.Second),
	}
}
