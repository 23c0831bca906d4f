package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "DISPATCH"
	configName = "config"
	configType = "toml"
	configDir  = ".config/dispatch"
)

// Keys understood by Load. Durations accept plain seconds ("3", "1.5") or Go
// duration strings ("90s").
const (
	KeyLedgerPath           = "ledger.path"
	KeyLedgerSheet          = "ledger.sheet"
	KeyLedgerGroupColumn    = "ledger.group_column"
	KeyDirectoryPath        = "directory.path"
	KeyDirectorySheet       = "directory.sheet"
	KeyDirectoryIDColumn    = "directory.id_column"
	KeyDirectoryPhoneColumn = "directory.phone_column"
	KeyOutputDir            = "output.dir"
	KeyBrowserHeadless      = "browser.headless"
	KeyBrowserUserDataDir   = "browser.user_data_dir"
	KeyBrowserExecPath      = "browser.exec_path"
	KeyBrowserActionTimeout = "browser.action_timeout"
	KeyClientBaseURL        = "client.base_url"
	KeySleepBetween         = "pacing.sleep_between"
	KeyTimeoutReady         = "timeouts.ready"
	KeyTimeoutOpenChat      = "timeouts.open_chat"
	KeyTimeoutSettle        = "timeouts.settle"
	KeyTimeoutAttachMenu    = "timeouts.attach_menu"
	KeyTimeoutFileInput     = "timeouts.file_input"
	KeyTimeoutSendButton    = "timeouts.send_button"
	KeyMessageTemplate      = "message.template"
	KeySelectorsPath        = "selectors.path"
	KeyLogMode              = "log.mode"
	KeyLogLevel             = "log.level"
)

type Config struct {
	Ledger          LedgerConfig
	Directory       DirectoryConfig
	OutputDir       string
	Browser         BrowserConfig
	BaseURL         string
	SleepBetween    time.Duration
	Timeouts        Timeouts
	MessageTemplate string
	SelectorsPath   string
	Log             LogConfig
}

type LedgerConfig struct {
	Path        string
	Sheet       string
	GroupColumn string
}

type DirectoryConfig struct {
	Path        string
	Sheet       string
	IDColumn    string
	PhoneColumn string
}

type BrowserConfig struct {
	Headless      bool
	UserDataDir   string
	ExecPath      string
	ActionTimeout time.Duration
}

type Timeouts struct {
	Ready      time.Duration
	OpenChat   time.Duration
	Settle     time.Duration
	AttachMenu time.Duration
	FileInput  time.Duration
	SendButton time.Duration
}

type LogConfig struct {
	Mode  string
	Level string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLedgerGroupColumn, "Assessor")
	v.SetDefault(KeyDirectoryIDColumn, "codigo")
	v.SetDefault(KeyDirectoryPhoneColumn, "numero")
	v.SetDefault(KeyOutputDir, "output")
	v.SetDefault(KeyBrowserHeadless, false)
	v.SetDefault(KeyBrowserActionTimeout, "30")
	v.SetDefault(KeyClientBaseURL, "https://web.whatsapp.com")
	v.SetDefault(KeySleepBetween, "3")
	v.SetDefault(KeyTimeoutReady, "120")
	v.SetDefault(KeyTimeoutOpenChat, "60")
	v.SetDefault(KeyTimeoutSettle, "1")
	v.SetDefault(KeyTimeoutAttachMenu, "15")
	v.SetDefault(KeyTimeoutFileInput, "20")
	v.SetDefault(KeyTimeoutSendButton, "30")
	v.SetDefault(KeyLogMode, "development")
	v.SetDefault(KeyLogLevel, "info")
}

// New returns a viper instance with defaults, DISPATCH_* environment lookup and
// the config file read in. configFile overrides the search in
// $HOME/.config/dispatch; only an explicit file is required to exist.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return v, nil
}

// LoadDotEnv exports the variables of a .env file. A missing file is not an
// error. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Ledger: LedgerConfig{
			Path:        v.GetString(KeyLedgerPath),
			Sheet:       v.GetString(KeyLedgerSheet),
			GroupColumn: v.GetString(KeyLedgerGroupColumn),
		},
		Directory: DirectoryConfig{
			Path:        v.GetString(KeyDirectoryPath),
			Sheet:       v.GetString(KeyDirectorySheet),
			IDColumn:    v.GetString(KeyDirectoryIDColumn),
			PhoneColumn: v.GetString(KeyDirectoryPhoneColumn),
		},
		OutputDir: v.GetString(KeyOutputDir),
		Browser: BrowserConfig{
			Headless:    v.GetBool(KeyBrowserHeadless),
			UserDataDir: v.GetString(KeyBrowserUserDataDir),
			ExecPath:    v.GetString(KeyBrowserExecPath),
		},
		BaseURL:         v.GetString(KeyClientBaseURL),
		MessageTemplate: v.GetString(KeyMessageTemplate),
		SelectorsPath:   v.GetString(KeySelectorsPath),
		Log: LogConfig{
			Mode:  v.GetString(KeyLogMode),
			Level: v.GetString(KeyLogLevel),
		},
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{key: KeyBrowserActionTimeout, target: &cfg.Browser.ActionTimeout},
		{key: KeySleepBetween, target: &cfg.SleepBetween},
		{key: KeyTimeoutReady, target: &cfg.Timeouts.Ready},
		{key: KeyTimeoutOpenChat, target: &cfg.Timeouts.OpenChat},
		{key: KeyTimeoutSettle, target: &cfg.Timeouts.Settle},
		{key: KeyTimeoutAttachMenu, target: &cfg.Timeouts.AttachMenu},
		{key: KeyTimeoutFileInput, target: &cfg.Timeouts.FileInput},
		{key: KeyTimeoutSendButton, target: &cfg.Timeouts.SendButton},
	}
	for _, d := range durations {
		value, err := ParseSeconds(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = value
	}

	return cfg, nil
}

// ParseSeconds reads a number of seconds or a Go duration string. Negative
// values are rejected.
func ParseSeconds(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var value time.Duration
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		value = time.Duration(seconds * float64(time.Second))
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		value = parsed
	}

	if value < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", raw)
	}
	return value, nil
}
