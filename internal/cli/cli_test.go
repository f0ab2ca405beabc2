package cli

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/pkg/secretstore"
)

func TestRegisterFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-env", "x.env", "-json"}))
	assert.Equal(t, "x.env", opts.EnvFile)
	assert.Equal(t, "", opts.ConfigFile)
	assert.True(t, opts.JSON)
}

func TestRender(t *testing.T) {
	out := Render("账户", []Row{R("account_id", "0xabc"), R("registered", true)})
	assert.Contains(t, out, "账户")
	assert.Contains(t, out, "account_id")
	assert.Contains(t, out, "0xabc")
	assert.Contains(t, out, "true")

	assert.Contains(t, Render("空", nil), "(空)")
}

func TestPrint_JSON(t *testing.T) {
	var buf bytes.Buffer
	app := &App{Options: &Options{JSON: true}, Out: &buf}
	require.NoError(t, app.Print("ignored", map[string]int{"order_id": 7}, R("order_id", 7)))
	assert.JSONEq(t, `{"order_id":7}`, buf.String())
}

func TestFormatError(t *testing.T) {
	apiErr := &client.APIError{StatusCode: 400, Code: -1003, Message: "bad", Body: `{"success":false}`}
	out := FormatError(apiErr)
	assert.Contains(t, out, "400")
	assert.Contains(t, out, "-1003")
	assert.Contains(t, out, `{"success":false}`)

	assert.Contains(t, FormatError(errors.New("boom")), "boom")
}

func TestBootstrap(t *testing.T) {
	for _, k := range []string{"ORDERLY_ACCOUNT_ID", "ORDERLY_KEY", "ORDERLY_SECRET", "SECRET_DB", "SECRET_KEY", "JOURNAL_DB", "LOG_FILE", "WALLET_PRIVATE_KEY", "WALLET_MNEMONIC"} {
		t.Setenv(k, "")
	}
	// 由 .env 提供，测试结束后恢复
	t.Setenv("ORDERLY_BROKER_ID", "")
	require.NoError(t, os.Unsetenv("ORDERLY_BROKER_ID"))

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ORDERLY_BROKER_ID=demo\n"), 0600))
	t.Setenv("JOURNAL_DB", filepath.Join(dir, "journal.db"))

	app, err := Bootstrap("check-account", &Options{EnvFile: envFile})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "demo", app.Config.BrokerID)
	_, isDotenv := app.Env.Store.(*secretstore.DotenvStore)
	assert.True(t, isDotenv)
	assert.Nil(t, app.Env.Client.Credential())
}

func TestBootstrap_SecretDBNeedsKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDERLY_BROKER_ID", "demo")
	t.Setenv("SECRET_DB", filepath.Join(dir, "secrets"))
	t.Setenv("SECRET_KEY", "")
	t.Setenv("JOURNAL_DB", "")

	_, err := Bootstrap("add-key", &Options{EnvFile: filepath.Join(dir, "missing.env")})
	assert.Error(t, err)
}
