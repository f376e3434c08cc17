package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/statusmonitor/internal/domain"
)

const (
	fmtErrEmptyTargetOption = "targets[%d]: %s must not be empty"
	fmtErrInvalidTarget     = "target %q: %s"
)

// TargetsFile is the on-disk shape of the targets file.
type TargetsFile struct {
	// Headers are sent with every probe; per-target headers win.
	Headers map[string]string `yaml:"headers"`
	Targets []TargetConfig    `yaml:"targets"`
}

type TargetConfig struct {
	Name            string            `yaml:"name"`
	URL             string            `yaml:"url"`
	Timeout         time.Duration     `yaml:"timeout"`
	VerifyTLS       bool              `yaml:"verify_tls"`
	FollowRedirects bool              `yaml:"follow_redirects"`
	SuccessCodes    []int             `yaml:"success_codes"`
	Headers         map[string]string `yaml:"headers"`
}

var DefaultTargetConfig = TargetConfig{
	Timeout:         10 * time.Second,
	VerifyTLS:       true,
	FollowRedirects: true,
	SuccessCodes:    []int{200},
}

// UnmarshalYAML fills fields missing from the document with
// DefaultTargetConfig.
func (t *TargetConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw TargetConfig
	r := raw(DefaultTargetConfig)
	r.SuccessCodes = nil
	if err := node.Decode(&r); err != nil {
		return err
	}
	if r.SuccessCodes == nil {
		r.SuccessCodes = append([]int(nil), DefaultTargetConfig.SuccessCodes...)
	}
	*t = TargetConfig(r)
	return nil
}

// LoadTargets reads and validates a targets file.
func LoadTargets(path string) ([]domain.Target, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	ts, err := ParseTargets(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

func ParseTargets(b []byte) ([]domain.Target, error) {
	var f TargetsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ToDomain(), nil
}

// Validate reports every problem in the file, not just the first.
func (f *TargetsFile) Validate() error {
	if len(f.Targets) == 0 {
		return errors.New("no targets configured")
	}
	var errs []error
	seen := make(map[string]bool, len(f.Targets))
	for i, t := range f.Targets {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf(fmtErrEmptyTargetOption, i, "name"))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf(fmtErrInvalidTarget, name, "duplicate name"))
		}
		seen[name] = true
		if err := validateURL(t.URL); err != nil {
			errs = append(errs, fmt.Errorf(fmtErrInvalidTarget, name, err.Error()))
		}
		if t.Timeout <= 0 {
			errs = append(errs, fmt.Errorf(fmtErrInvalidTarget, name, "timeout must be positive"))
		}
		if len(t.SuccessCodes) == 0 {
			errs = append(errs, fmt.Errorf(fmtErrInvalidTarget, name, "success_codes must not be empty"))
		}
		for _, c := range t.SuccessCodes {
			if c < 100 || c > 599 {
				errs = append(errs, fmt.Errorf(fmtErrInvalidTarget, name, fmt.Sprintf("invalid status code %d", c)))
			}
		}
	}
	return errors.Join(errs...)
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("url must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url has no host")
	}
	return nil
}

// ToDomain converts the file into domain targets in file order.
func (f *TargetsFile) ToDomain() []domain.Target {
	out := make([]domain.Target, 0, len(f.Targets))
	for _, t := range f.Targets {
		headers := make(map[string]string, len(f.Headers)+len(t.Headers))
		for k, v := range f.Headers {
			headers[k] = v
		}
		for k, v := range t.Headers {
			headers[k] = v
		}
		out = append(out, domain.Target{
			Name: strings.TrimSpace(t.Name),
			URL:  t.URL,
			Probe: domain.ProbeConfig{
				Timeout:         t.Timeout,
				VerifyTLS:       t.VerifyTLS,
				FollowRedirects: t.FollowRedirects,
				SuccessCodes:    append([]int(nil), t.SuccessCodes...),
				Headers:         headers,
			},
		})
	}
	return out
}
