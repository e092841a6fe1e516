// Package config loads and merges shepherd's configuration. Policy values
// (labels, thresholds, limits) come from YAML; secrets come only from the
// environment. The resolved Config is immutable and passed explicitly into
// every component constructor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/shepherd/internal/model"
)

// Prerequisite names the lower tier a contributor must have completed
// issues in, and how many, before holding an issue of the guarded tier.
type Prerequisite struct {
	Tier string `yaml:"tier"`
	Need int    `yaml:"need,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	// Repo is the owner/name the bot operates on.
	Repo string `yaml:"repo,omitempty"`

	// BotName namespaces comment markers so multiple bots can share a repo.
	BotName string `yaml:"bot_name,omitempty"`

	// TierLabels maps each difficulty tier to the label text used on issues.
	// Matching is case-insensitive and hyphen/space tolerant.
	TierLabels map[string]string `yaml:"tier_labels,omitempty"`

	// Prerequisites maps a tier to the lower-tier completion it requires.
	// Tiers absent from the map (good-first-issue) have no prerequisite.
	Prerequisites map[string]Prerequisite `yaml:"prerequisites,omitempty"`

	// ExemptRoles bypass eligibility and spam checks entirely.
	ExemptRoles []string `yaml:"exempt_roles,omitempty"`

	// ReminderDays is the assignment age at which a nudge comment is posted.
	// ReclaimDays is the age at which the assignment is reclaimed.
	ReminderDays int `yaml:"reminder_days,omitempty"`
	ReclaimDays  int `yaml:"reclaim_days,omitempty"`

	// MaxOpenAssignments caps concurrent open assignments per contributor.
	MaxOpenAssignments int `yaml:"max_open_assignments,omitempty"`

	// Denylist accounts may hold at most one open assignment, and only on
	// good-first-issue issues.
	Denylist []string `yaml:"denylist,omitempty"`
}

// Default policy values.
const (
	DefaultBotName            = "shepherd"
	DefaultReminderDays       = 7
	DefaultReclaimDays        = 21
	DefaultMaxOpenAssignments = 2
	DefaultNeed               = 1

	// DenylistMaxOpenAssignments is the cap applied to denylisted accounts.
	DenylistMaxOpenAssignments = 1
)

// DefaultTierLabels returns the default tier-to-label mapping.
func DefaultTierLabels() map[string]string {
	return map[string]string{
		string(model.TierGoodFirstIssue): "good first issue",
		string(model.TierBeginner):       "beginner",
		string(model.TierIntermediate):   "intermediate",
		string(model.TierAdvanced):       "advanced",
	}
}

// DefaultPrerequisites returns the default tier prerequisite table:
// each tier requires one completed issue of the tier below it.
func DefaultPrerequisites() map[string]Prerequisite {
	return map[string]Prerequisite{
		string(model.TierBeginner):     {Tier: string(model.TierGoodFirstIssue), Need: DefaultNeed},
		string(model.TierIntermediate): {Tier: string(model.TierBeginner), Need: DefaultNeed},
		string(model.TierAdvanced):     {Tier: string(model.TierIntermediate), Need: DefaultNeed},
	}
}

// DefaultExemptRoles returns the roles that bypass all policy checks.
func DefaultExemptRoles() []string {
	return []string{
		string(model.RoleAdmin),
		string(model.RoleMaintain),
		string(model.RoleWrite),
		string(model.RoleTriage),
	}
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	return &Config{
		BotName:            DefaultBotName,
		TierLabels:         DefaultTierLabels(),
		Prerequisites:      DefaultPrerequisites(),
		ExemptRoles:        DefaultExemptRoles(),
		ReminderDays:       DefaultReminderDays,
		ReclaimDays:        DefaultReclaimDays,
		MaxOpenAssignments: DefaultMaxOpenAssignments,
	}
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".shepherd"
	}
	return filepath.Join(configDir, "shepherd")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".shepherd.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then merges
// any local .shepherd.yaml on top (local values take precedence), then fills
// remaining gaps with defaults and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}
		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}
		cfg = mergeConfig(cfg, &localCfg)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.Repo != "" {
		result.Repo = local.Repo
	}
	if local.BotName != "" {
		result.BotName = local.BotName
	}
	if len(local.TierLabels) > 0 {
		result.TierLabels = local.TierLabels
	}
	if len(local.Prerequisites) > 0 {
		result.Prerequisites = local.Prerequisites
	}
	if len(local.ExemptRoles) > 0 {
		result.ExemptRoles = local.ExemptRoles
	}
	if local.ReminderDays != 0 {
		result.ReminderDays = local.ReminderDays
	}
	if local.ReclaimDays != 0 {
		result.ReclaimDays = local.ReclaimDays
	}
	if local.MaxOpenAssignments != 0 {
		result.MaxOpenAssignments = local.MaxOpenAssignments
	}
	if len(local.Denylist) > 0 {
		result.Denylist = local.Denylist
	}

	return &result
}

// applyDefaults fills unset fields with default values.
func (c *Config) applyDefaults() {
	if c.BotName == "" {
		c.BotName = DefaultBotName
	}
	if len(c.TierLabels) == 0 {
		c.TierLabels = DefaultTierLabels()
	}
	if len(c.Prerequisites) == 0 {
		c.Prerequisites = DefaultPrerequisites()
	}
	if len(c.ExemptRoles) == 0 {
		c.ExemptRoles = DefaultExemptRoles()
	}
	if c.ReminderDays == 0 {
		c.ReminderDays = DefaultReminderDays
	}
	if c.ReclaimDays == 0 {
		c.ReclaimDays = DefaultReclaimDays
	}
	if c.MaxOpenAssignments == 0 {
		c.MaxOpenAssignments = DefaultMaxOpenAssignments
	}
	for tier, p := range c.Prerequisites {
		if p.Need == 0 {
			p.Need = DefaultNeed
			c.Prerequisites[tier] = p
		}
	}
}

// Validate checks the config for values the engine cannot operate with.
func (c *Config) Validate() error {
	if c.ReminderDays >= c.ReclaimDays {
		return fmt.Errorf("reminder_days (%d) must be less than reclaim_days (%d)", c.ReminderDays, c.ReclaimDays)
	}
	for tier, p := range c.Prerequisites {
		if _, ok := model.ParseTier(tier); !ok {
			return fmt.Errorf("unknown tier %q in prerequisites", tier)
		}
		if _, ok := model.ParseTier(p.Tier); !ok {
			return fmt.Errorf("unknown prerequisite tier %q for tier %q", p.Tier, tier)
		}
		if p.Need < 1 {
			return fmt.Errorf("prerequisite need for tier %q must be at least 1", tier)
		}
	}
	if c.Repo != "" {
		if _, _, err := SplitRepo(c.Repo); err != nil {
			return err
		}
	}
	return nil
}

// SplitRepo splits an owner/name repository reference.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo %q (expected owner/name)", repo)
	}
	return parts[0], parts[1], nil
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Following 12-factor app best practices, tokens are only read from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// Label returns the configured label text for a tier.
func (c *Config) Label(tier model.Tier) string {
	if label, ok := c.TierLabels[string(tier)]; ok {
		return label
	}
	return string(tier)
}

// TierForLabel resolves a label string to a tier using the configured
// mapping with normalized comparison.
func (c *Config) TierForLabel(label string) (model.Tier, bool) {
	for tier, text := range c.TierLabels {
		if model.LabelMatches(label, text) {
			return model.Tier(tier), true
		}
	}
	return model.TierNone, false
}

// ResolveTier resolves an issue's difficulty tier from its labels using the
// configured mapping. When multiple tier labels are present the hardest one
// wins, so a mislabeled issue is guarded at the stricter tier. TierNone is
// returned when no label matches.
func (c *Config) ResolveTier(labels []string) model.Tier {
	tier := model.TierNone
	rank := -1
	for _, label := range labels {
		t, ok := c.TierForLabel(label)
		if !ok {
			continue
		}
		for idx, candidate := range model.AllTiers {
			if t == candidate && idx > rank {
				tier = t
				rank = idx
			}
		}
	}
	return tier
}

// Prereq returns the prerequisite tier and count for a tier, or ok=false
// when the tier has no prerequisite.
func (c *Config) Prereq(tier model.Tier) (prereq model.Tier, need int, ok bool) {
	p, found := c.Prerequisites[string(tier)]
	if !found {
		return model.TierNone, 0, false
	}
	need = p.Need
	if need == 0 {
		need = DefaultNeed
	}
	return model.Tier(p.Tier), need, true
}

// IsExemptRole reports whether a role bypasses policy checks.
func (c *Config) IsExemptRole(role model.Role) bool {
	for _, r := range c.ExemptRoles {
		if model.Role(r) == role {
			return true
		}
	}
	return false
}

// IsDenylisted reports whether a login is on the denylist.
// Login comparison is case-insensitive, matching platform behavior.
func (c *Config) IsDenylisted(login string) bool {
	for _, d := range c.Denylist {
		if strings.EqualFold(d, login) {
			return true
		}
	}
	return false
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# Shepherd configuration file
# See: shepherd config defaults  (for all available options)

# Repository the bot operates on
# repo: owner/name

# Staleness thresholds in days (reminder must be less than reclaim)
reminder_days: 7
reclaim_days: 21

# Max concurrent open assignments per contributor
max_open_assignments: 2

# Accounts restricted to a single good-first-issue assignment (optional)
# denylist:
#   - some-flagged-account
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
