// Package config loads hook configuration from an optional TOML file.
//
// Each hook reads its own section under [hooks.<event>.<hook>]. Values are
// layered: built-in defaults, then the config file, then CLI flags applied
// by the command layer. The configuration is a plain immutable snapshot
// constructed once per process and passed explicitly through the pipeline.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Review modes accepted by the review guard.
const (
	ModeAll         = "all"
	ModeCommitted   = "committed"
	ModeUncommitted = "uncommitted"
)

// Failure policies for review invocation failures.
const (
	FailureDeny  = "deny"
	FailureAllow = "allow"
)

// ReviewGuard configures the pre-push review-gating pipeline.
type ReviewGuard struct {
	Mode            string `mapstructure:"mode"`
	MaxChars        int    `mapstructure:"max_chars"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	FailurePolicy   string `mapstructure:"failure_policy"`
	CacheDir        string `mapstructure:"cache_dir"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

// PolicyOverride adjusts the decision or message for tools matching a
// pattern.
type PolicyOverride struct {
	Decision string `mapstructure:"decision"`
	Message  string `mapstructure:"message"`
}

// PolicyMessages holds the per-decision message templates. Templates may
// reference {tool_name}.
type PolicyMessages struct {
	Allow string `mapstructure:"allow"`
	Ask   string `mapstructure:"ask"`
	Deny  string `mapstructure:"deny"`
}

// Policy configures the tool permission policy hook.
type Policy struct {
	Allow     []string                  `mapstructure:"allow"`
	Ask       []string                  `mapstructure:"ask"`
	Deny      []string                  `mapstructure:"deny"`
	Messages  PolicyMessages            `mapstructure:"messages"`
	Overrides map[string]PolicyOverride `mapstructure:"overrides"`
}

// LoadReviewGuard reads the review guard section from the TOML file at
// path. An empty path yields pure defaults; a missing or malformed file at
// a non-empty path is an error, reported before any event is processed.
func LoadReviewGuard(path string) (ReviewGuard, error) {
	v, err := open(path)
	if err != nil {
		return ReviewGuard{}, err
	}

	const section = "hooks.pre_tool_use.review_guard."
	v.SetDefault(section+"mode", ModeCommitted)
	v.SetDefault(section+"max_chars", 6000)
	v.SetDefault(section+"timeout_seconds", 120)
	v.SetDefault(section+"failure_policy", FailureDeny)
	v.SetDefault(section+"cache_ttl_seconds", 900)

	cfg := ReviewGuard{
		Mode:            v.GetString(section + "mode"),
		MaxChars:        v.GetInt(section + "max_chars"),
		TimeoutSeconds:  v.GetInt(section + "timeout_seconds"),
		FailurePolicy:   v.GetString(section + "failure_policy"),
		CacheDir:        v.GetString(section + "cache_dir"),
		CacheTTLSeconds: v.GetInt(section + "cache_ttl_seconds"),
	}
	if err := cfg.Validate(); err != nil {
		return ReviewGuard{}, err
	}
	return cfg, nil
}

// Validate checks the enum-valued fields. Callers re-run it after layering
// CLI flag overrides on top of the loaded configuration.
func (c ReviewGuard) Validate() error {
	switch c.Mode {
	case ModeAll, ModeCommitted, ModeUncommitted:
	default:
		return fmt.Errorf("invalid review mode %q (want all, committed, or uncommitted)", c.Mode)
	}
	switch c.FailurePolicy {
	case FailureDeny, FailureAllow:
	default:
		return fmt.Errorf("invalid failure policy %q (want deny or allow)", c.FailurePolicy)
	}
	return nil
}

// LoadPolicy reads the tool policy section from the TOML file at path.
func LoadPolicy(path string) (Policy, error) {
	v, err := open(path)
	if err != nil {
		return Policy{}, err
	}
	var cfg Policy
	if err := v.UnmarshalKey("hooks.pre_tool_use.policy", &cfg); err != nil {
		return Policy{}, fmt.Errorf("parsing policy config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the config file at path is readable and parses.
// Hooks without their own settings still validate the shared file so a
// broken configuration surfaces immediately.
func Validate(path string) error {
	_, err := open(path)
	return err
}

func open(path string) (*viper.Viper, error) {
	v := viper.New()
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return v, nil
}
