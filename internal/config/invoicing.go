package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InvoicingConfig carries presentation and numbering defaults for invoices.
type InvoicingConfig struct {
	DefaultTaxRate   float64 `mapstructure:"defaultTaxRate"`
	NumberTemplate   string  `mapstructure:"numberTemplate"`
	BusinessName     string  `mapstructure:"businessName"`
	Footer           string  `mapstructure:"footer"`
	CurrencySymbol   string  `mapstructure:"currencySymbol"`
	DescriptionLimit int     `mapstructure:"descriptionLimit"`
	PaymentTermDays  int     `mapstructure:"paymentTermDays"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		DefaultTaxRate:   8,
		NumberTemplate:   "INV-{YYYY}-{SEQ3}",
		BusinessName:     "FreelanceFlow",
		Footer:           "Thank you for your business!",
		CurrencySymbol:   "$",
		DescriptionLimit: 50,
		PaymentTermDays:  30,
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfig wraps a fixed config, mainly for tests.
func NewStaticInvoicingConfig(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder(appCfg Config, log *zap.Logger) (*InvoicingConfigHolder, error) {
	log = log.Named("config.invoicing")
	v := viper.New()

	if appCfg.InvoicingConfigFile != "" {
		v.SetConfigFile(appCfg.InvoicingConfigFile)
	} else {
		v.SetConfigName("invoicing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/freelanceflow")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FREELANCEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.defaultTaxRate", defaults.DefaultTaxRate)
	v.SetDefault("invoicing.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoicing.businessName", defaults.BusinessName)
	v.SetDefault("invoicing.footer", defaults.Footer)
	v.SetDefault("invoicing.currencySymbol", defaults.CurrencySymbol)
	v.SetDefault("invoicing.descriptionLimit", defaults.DescriptionLimit)
	v.SetDefault("invoicing.paymentTermDays", defaults.PaymentTermDays)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read invoicing config: %w", err)
		}
		watch = false
	}

	cfg, err := decodeInvoicing(v)
	if err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeInvoicing(v)
			if err != nil {
				log.Warn("invalid config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

// decodeInvoicing unmarshals the whole settings tree so file values, env
// overrides and defaults are merged key by key.
func decodeInvoicing(v *viper.Viper) (InvoicingConfig, error) {
	var settings struct {
		Invoicing InvoicingConfig `mapstructure:"invoicing"`
	}
	if err := v.Unmarshal(&settings); err != nil {
		return InvoicingConfig{}, fmt.Errorf("decode invoicing config: %w", err)
	}
	if err := validateInvoicingConfig(settings.Invoicing); err != nil {
		return InvoicingConfig{}, err
	}
	return settings.Invoicing, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	if h == nil {
		return DefaultInvoicingConfig()
	}
	cfg, ok := h.current.Load().(InvoicingConfig)
	if !ok {
		return DefaultInvoicingConfig()
	}
	return cfg
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if cfg.DefaultTaxRate < 0 || cfg.DefaultTaxRate > 100 {
		return errors.New("invoicing.defaultTaxRate must be between 0 and 100")
	}
	if strings.TrimSpace(cfg.NumberTemplate) == "" {
		return errors.New("invoicing.numberTemplate cannot be empty")
	}
	if !strings.Contains(cfg.NumberTemplate, "{SEQ") {
		return errors.New("invoicing.numberTemplate must contain a {SEQ} token")
	}
	if cfg.DescriptionLimit < 4 {
		return errors.New("invoicing.descriptionLimit must be at least 4")
	}
	if cfg.PaymentTermDays < 0 {
		return errors.New("invoicing.paymentTermDays cannot be negative")
	}
	return nil
}
