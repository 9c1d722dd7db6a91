package core

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

type ConfigLoader struct {
	apiKeys APIKeyResolver
	storage afero.Fs
	stderr  io.Writer
}

func NewConfigLoader(storage afero.Fs, env contracts.Environment, stderr io.Writer) *ConfigLoader {
	return &ConfigLoader{
		apiKeys: NewAPIKeyResolver(env),
		storage: storage,
		stderr:  stderr,
	}
}

type commandLine struct {
	configPath string
	force      bool
	strict     bool
	maxRetry   int
	apiKey     string
	language   string
	directory  string
	mossyDir   string
}

// LoadConfig layers the defaults, the optional TOML file and any flags that
// were set, in that order.
func (this *ConfigLoader) LoadConfig(name string, args []string) (config contracts.Config, err error) {
	flags, line := this.flagSet(name)
	if err = flags.Parse(args); err != nil {
		return contracts.Config{}, err
	}

	config = contracts.DefaultConfig()
	if line.configPath != "" {
		if config, err = this.parseConfigFile(line.configPath, config); err != nil {
			return contracts.Config{}, err
		}
	}

	flags.Visit(func(set *flag.Flag) {
		switch set.Name {
		case "force":
			config.ForceUpdate = line.force
		case "strict":
			config.Strict = line.strict
		case "max-retry":
			config.MaxRetry = line.maxRetry
		case "api-key":
			config.APIKey = line.apiKey
		case "language":
			config.Language = line.language
		case "dir":
			config.ManifestDirectory = line.directory
		case "mossy-dir":
			config.Mossy.Directory = line.mossyDir
		}
	})
	config.APIKey = strings.TrimSpace(config.APIKey)
	if config.APIKey == "" {
		config.APIKey = this.apiKeys.Resolve()
	}

	if err = validateConfig(config); err != nil {
		return contracts.Config{}, err
	}
	if name == "mossy" {
		if err = validateMossyConfig(config.Mossy); err != nil {
			return contracts.Config{}, err
		}
	}
	return config, nil
}

func (this *ConfigLoader) flagSet(name string) (*flag.FlagSet, *commandLine) {
	line := new(commandLine)
	flags := flag.NewFlagSet("mfsync "+name, flag.ContinueOnError)
	flags.SetOutput(this.stderr)
	flags.StringVar(&line.configPath,
		"config",
		"",
		"Path to a TOML file overriding the built-in defaults (see 'mfsync config').",
	)
	flags.BoolVar(&line.force,
		"force",
		false,
		"When set, reinstall the manifest even when the local copy is current.",
	)
	flags.BoolVar(&line.strict,
		"strict",
		false,
		"When set, an unexpected remote directory or a checksum mismatch is fatal.",
	)
	flags.IntVar(&line.maxRetry,
		"max-retry",
		0,
		"HTTP max retry for transient failures.",
	)
	flags.StringVar(&line.apiKey,
		"api-key",
		"",
		"API key sent as X-API-KEY (default: $"+APIKeyVariable+", possibly from .env).",
	)
	flags.StringVar(&line.language,
		"language",
		"",
		"Manifest language; the closest available language is chosen (default: en).",
	)
	flags.StringVar(&line.directory,
		"dir",
		"",
		"Local manifest directory (default: manifest).",
	)
	flags.StringVar(&line.mossyDir,
		"mossy-dir",
		"",
		"Local directory of the Mossy CSV (default: mossy).",
	)
	flags.Usage = func() {
		_, _ = fmt.Fprintf(this.stderr, "Usage of mfsync %s:\n", name)
		flags.PrintDefaults()
		if name == "check" {
			_, _ = fmt.Fprintln(this.stderr, `
exit code 0: local manifest is current
exit code 1: general failure (see stderr for details)
exit code 2: an update is available`)
		}
	}
	return flags, line
}

func (this *ConfigLoader) parseConfigFile(path string, defaults contracts.Config) (contracts.Config, error) {
	data, err := afero.ReadFile(this.storage, path)
	if err != nil {
		return contracts.Config{}, err
	}
	config := defaults
	metadata, err := toml.Decode(string(data), &config)
	if err != nil {
		return contracts.Config{}, fmt.Errorf("config file %q: %w", path, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return contracts.Config{}, fmt.Errorf("%w in %q: %s", unknownConfigKeyErr, path, undecoded[0])
	}
	return config, nil
}

func validateConfig(config contracts.Config) error {
	if config.MaxRetry < 0 {
		return maxRetryErr
	}
	if strings.TrimSpace(config.Language) == "" {
		return blankLanguageErr
	}
	if _, err := contracts.ParseLocation(config.MetadataEndpoint); err != nil {
		return fmt.Errorf("metadata endpoint: %w", err)
	}
	if _, err := contracts.ParseLocation(config.ContentBaseAddress); err != nil {
		return fmt.Errorf("content base address: %w", err)
	}
	if len(config.ResponsePath) == 0 {
		return blankResponsePathErr
	}
	if strings.TrimSpace(config.ManifestDirectory) == "" {
		return blankManifestDirectoryErr
	}
	if config.Naming.Extension == "" {
		return blankExtensionErr
	}
	if config.BackupExtension == "" || config.BackupExtension == config.Naming.Extension {
		return backupExtensionErr
	}
	if config.ConnectTimeoutSeconds <= 0 || config.MetadataTimeoutSeconds <= 0 || config.DownloadTimeoutSeconds <= 0 {
		return timeoutErr
	}
	return nil
}

func validateMossyConfig(config contracts.MossyConfig) error {
	if _, err := contracts.ParseLocation(config.TitleURL); err != nil {
		return fmt.Errorf("%w: title url: %w", mossyAddressErr, err)
	}
	if _, err := contracts.ParseLocation(config.ExportURL); err != nil {
		return fmt.Errorf("%w: export url: %w", mossyAddressErr, err)
	}
	if strings.TrimSpace(config.Directory) == "" {
		return blankMossyDirectoryErr
	}
	return nil
}

// WriteDefaultConfig renders the built-in defaults as a TOML file.
func WriteDefaultConfig(writer io.Writer) error {
	return toml.NewEncoder(writer).Encode(contracts.DefaultConfig())
}

var (
	maxRetryErr               = errors.New("max-retry must not be negative")
	blankLanguageErr          = errors.New("language should not be blank")
	blankResponsePathErr      = errors.New("response path should not be empty")
	blankManifestDirectoryErr = errors.New("manifest directory should not be blank")
	blankExtensionErr         = errors.New("manifest extension should not be blank")
	backupExtensionErr        = errors.New("backup extension must be set and differ from the manifest extension")
	timeoutErr                = errors.New("timeouts must be positive")
	unknownConfigKeyErr       = errors.New("unknown config key")
	mossyAddressErr           = errors.New("mossy title_url and export_url must be set")
	blankMossyDirectoryErr    = errors.New("mossy directory should not be blank")
)
