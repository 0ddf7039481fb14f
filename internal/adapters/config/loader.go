// Package config provides the configuration loader for estatedesk.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFilename is looked up in the working directory.
	DefaultFilename = "estatedesk.yaml"
	// EnvConfig overrides the config file path.
	EnvConfig = "ESTATEDESK_CONFIG"
	// EnvBaseURL overrides api.base_url.
	EnvBaseURL = "ESTATEDESK_API_URL"
)

// Path is the config file location chosen on the command line. Empty means
// EnvConfig, then DefaultFilename.
type Path string

// Loader implements ports.ConfigLoader for YAML files.
type Loader struct {
	log      ports.Logger
	validate *validator.Validate
	getenv   func(string) string
}

// NewLoader creates a Loader reading the process environment.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		getenv:   os.Getenv,
	}
}

// Resolve applies the path precedence: explicit path, EnvConfig, DefaultFilename.
func (l *Loader) Resolve(path string) string {
	if path != "" {
		return path
	}
	if env := l.getenv(EnvConfig); env != "" {
		return env
	}
	return DefaultFilename
}

// Load reads the configuration at path. A missing or empty file yields defaults.
// Environment overrides are applied last.
func (l *Loader) Load(path string) (*domain.Config, error) {
	path = l.Resolve(path)

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.log.Debug(fmt.Sprintf("config file %s not found, using defaults", path))
		data = nil
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(domain.ErrConfigInvalid, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path))
	}

	if err := l.validate.Struct(file); err != nil {
		return nil, errors.Join(domain.ErrConfigInvalid, zerr.With(zerr.New(describe(err)), "path", path))
	}

	cfg, err := l.toDomain(file)
	if err != nil {
		return nil, errors.Join(domain.ErrConfigInvalid, zerr.With(err, "path", path))
	}
	return cfg, nil
}

func (l *Loader) toDomain(file File) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if file.API.BaseURL != "" {
		cfg.API.BaseURL = file.API.BaseURL
	}
	if env := strings.TrimSpace(l.getenv(EnvBaseURL)); env != "" {
		if err := l.validate.Var(env, "url"); err != nil {
			return nil, zerr.With(zerr.New(EnvBaseURL+" is not a valid URL"), "value", env)
		}
		cfg.API.BaseURL = env
	}
	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")

	if t := strings.TrimSpace(file.API.Timeout); t != "" && t != "0" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid api.timeout"), "timeout", t)
		}
		if d < 0 {
			return nil, zerr.With(zerr.New("api.timeout must not be negative"), "timeout", t)
		}
		cfg.API.Timeout = d
	}

	if file.API.TokenEnv != "" {
		cfg.API.TokenEnv = file.API.TokenEnv
	}
	cfg.API.Token = l.getenv(cfg.API.TokenEnv)

	for name, v := range file.Views {
		cfg.Views[name] = domain.ViewConfig{PageSize: v.PageSize}
	}
	cfg.Log = domain.LogConfig{JSON: file.Log.JSON, Verbose: file.Log.Verbose}
	return cfg, nil
}

// describe renders validator errors as "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s fails %s", fe.Namespace(), rule))
	}
	return "invalid configuration values: " + strings.Join(parts, ", ")
}
