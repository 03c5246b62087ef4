package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ahsanazmi1/altwallet-checkout-agent-sub001/internal/domain/service"
)

// Weight file names looked up under the config directory.
const (
	ApprovalFile          = "approval.yaml"
	PreferencesFile       = "preferences.yaml"
	MerchantPenaltiesFile = "merchant_penalties.yaml"
)

//go:embed defaults/*.yaml
var defaultFiles embed.FS

// FallbackRecorder counts config files replaced by embedded defaults.
type FallbackRecorder interface {
	RecordConfigFallback(file string)
}

// Weights bundles the three scoring configurations.
type Weights struct {
	Approval          service.ApprovalConfig
	Preferences       service.PreferenceConfig
	MerchantPenalties service.MerchantPenaltyConfig
}

// WeightsLoader reads weight files from a directory, falling back to the
// embedded defaults file by file.
type WeightsLoader struct {
	dir       string
	logger    *slog.Logger
	fallbacks FallbackRecorder
}

// NewWeightsLoader creates a loader. fallbacks may be nil.
func NewWeightsLoader(dir string, logger *slog.Logger, fallbacks FallbackRecorder) *WeightsLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeightsLoader{dir: dir, logger: logger, fallbacks: fallbacks}
}

// LoadAll loads every weight file. It never fails.
func (l *WeightsLoader) LoadAll() Weights {
	return Weights{
		Approval:          l.Approval(),
		Preferences:       l.Preferences(),
		MerchantPenalties: l.MerchantPenalties(),
	}
}

// Approval loads approval.yaml.
func (l *WeightsLoader) Approval() service.ApprovalConfig {
	return load(l, ApprovalFile, parseApproval, DefaultApprovalConfig)
}

// Preferences loads preferences.yaml.
func (l *WeightsLoader) Preferences() service.PreferenceConfig {
	return load(l, PreferencesFile, parsePreferences, DefaultPreferenceConfig)
}

// MerchantPenalties loads merchant_penalties.yaml.
func (l *WeightsLoader) MerchantPenalties() service.MerchantPenaltyConfig {
	return load(l, MerchantPenaltiesFile, parseMerchantPenalties, DefaultMerchantPenaltyConfig)
}

func load[C any](l *WeightsLoader, name string, parse func([]byte) (C, error), fallback func() C) C {
	if l.dir == "" {
		l.logger.Info("no config directory, using embedded weights", slog.String("file", name))
		return fallback()
	}

	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Info("config file not found, using embedded weights", slog.String("path", path))
		return fallback()
	}
	if err == nil {
		var cfg C
		if cfg, err = parse(data); err == nil {
			l.logger.Info("loaded config file", slog.String("path", path))
			return cfg
		}
	}

	l.logger.Warn("invalid config file, using embedded weights",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
	if l.fallbacks != nil {
		l.fallbacks.RecordConfigFallback(name)
	}
	return fallback()
}

// mustDefault parses an embedded default. The embedded files are covered by
// tests, so a failure here is a build defect.
func mustDefault[C any](name string, parse func([]byte) (C, error)) C {
	data, err := defaultFiles.ReadFile("defaults/" + name)
	if err != nil {
		panic(fmt.Sprintf("reading embedded %s: %v", name, err))
	}
	cfg, err := parse(data)
	if err != nil {
		panic(fmt.Sprintf("parsing embedded %s: %v", name, err))
	}
	return cfg
}

// DefaultApprovalConfig returns the embedded approval weights.
func DefaultApprovalConfig() service.ApprovalConfig {
	return mustDefault(ApprovalFile, parseApproval)
}

// DefaultPreferenceConfig returns the embedded preference weights.
func DefaultPreferenceConfig() service.PreferenceConfig {
	return mustDefault(PreferencesFile, parsePreferences)
}

// DefaultMerchantPenaltyConfig returns the embedded merchant penalties.
func DefaultMerchantPenaltyConfig() service.MerchantPenaltyConfig {
	return mustDefault(MerchantPenaltiesFile, parseMerchantPenalties)
}

func decodeYAML(data []byte, out any) error {
	if len(data) == 0 {
		return errors.New("empty document")
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}

func checkBounds(name string, lo, hi float64) error {
	if lo > hi {
		return fmt.Errorf("%s: min %v exceeds max %v", name, lo, hi)
	}
	return nil
}
