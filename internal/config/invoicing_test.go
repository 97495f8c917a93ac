package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeInvoicingFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoicing.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestInvoicingConfigFromFile(t *testing.T) {
	path := writeInvoicingFile(t, `
invoicing:
  defaultTaxRate: 11
  businessName: Studio North
  footer: Paid with thanks
`)

	holder, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: path}, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 11.0, cfg.DefaultTaxRate)
	assert.Equal(t, "Studio North", cfg.BusinessName)
	assert.Equal(t, "Paid with thanks", cfg.Footer)
	// untouched keys keep their defaults
	assert.Equal(t, "INV-{YYYY}-{SEQ3}", cfg.NumberTemplate)
	assert.Equal(t, 50, cfg.DescriptionLimit)
}

func TestInvoicingConfigPartialFileKeepsDefaults(t *testing.T) {
	path := writeInvoicingFile(t, `
invoicing:
  businessName: Studio X
`)

	holder, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: path}, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, "Studio X", cfg.BusinessName)
	assert.Equal(t, DefaultInvoicingConfig().NumberTemplate, cfg.NumberTemplate)
	assert.Equal(t, DefaultInvoicingConfig().Footer, cfg.Footer)
	assert.Equal(t, 30, cfg.PaymentTermDays)
}

func TestInvoicingConfigEnvOverridesFile(t *testing.T) {
	path := writeInvoicingFile(t, `
invoicing:
  footer: From file
`)
	t.Setenv("FREELANCEFLOW_INVOICING_FOOTER", "From env")
	t.Setenv("FREELANCEFLOW_INVOICING_CURRENCYSYMBOL", "€")

	holder, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: path}, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, "From env", cfg.Footer)
	assert.Equal(t, "€", cfg.CurrencySymbol)
	assert.Equal(t, "FreelanceFlow", cfg.BusinessName)
}

func TestInvoicingConfigWithoutFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	holder, err := NewInvoicingConfigHolder(Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultInvoicingConfig(), holder.Get())
}

func TestInvoicingConfigRejectsOutOfRangeTax(t *testing.T) {
	path := writeInvoicingFile(t, `
invoicing:
  defaultTaxRate: 140
`)

	_, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestInvoicingConfigRequiresSequenceToken(t *testing.T) {
	err := validateInvoicingConfig(InvoicingConfig{
		NumberTemplate:   "INV-{YYYY}",
		DescriptionLimit: 50,
	})
	assert.Error(t, err)
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *InvoicingConfigHolder
	assert.Equal(t, DefaultInvoicingConfig(), holder.Get())
}
