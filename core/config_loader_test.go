package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

func TestConfigLoaderFixture(t *testing.T) {
	gunit.Run(new(ConfigLoaderFixture), t)
}

type ConfigLoaderFixture struct {
	*gunit.Fixture

	loader      *ConfigLoader
	storage     afero.Fs
	environment FakeEnvironment
	stderr      *bytes.Buffer
}

func (this *ConfigLoaderFixture) Setup() {
	this.storage = afero.NewMemMapFs()
	this.environment = make(FakeEnvironment)
	this.stderr = new(bytes.Buffer)
	this.loader = NewConfigLoader(this.storage, this.environment, this.stderr)
}

func (this *ConfigLoaderFixture) writeConfig(content string) {
	_ = afero.WriteFile(this.storage, "mfsync.toml", []byte(content), 0644)
}

func (this *ConfigLoaderFixture) TestDefaults() {
	config, err := this.loader.LoadConfig("update", nil)

	this.So(err, should.BeNil)
	this.So(config, should.Resemble, contracts.DefaultConfig())
}

func (this *ConfigLoaderFixture) TestInvalidCLI() {
	config, err := this.loader.LoadConfig("update", []string{"-max-retry", "Hello, world!"})

	this.So(err, should.NotBeNil)
	this.So(config, should.Resemble, contracts.Config{})
	this.So(this.stderr.String(), should.ContainSubstring, "Usage of mfsync update")
}

func (this *ConfigLoaderFixture) TestFlagsOverrideDefaults() {
	config, err := this.loader.LoadConfig("update", []string{
		"-force",
		"-strict",
		"-max-retry", "3",
		"-api-key", " secret ",
		"-language", "fr",
		"-dir", "/var/lib/manifest",
	})

	this.So(err, should.BeNil)
	this.So(config.ForceUpdate, should.BeTrue)
	this.So(config.Strict, should.BeTrue)
	this.So(config.MaxRetry, should.Equal, 3)
	this.So(config.APIKey, should.Equal, "secret")
	this.So(config.Language, should.Equal, "fr")
	this.So(config.ManifestDirectory, should.Equal, "/var/lib/manifest")
}

func (this *ConfigLoaderFixture) TestConfigFileOverridesDefaults() {
	this.writeConfig(`
language = "de"
strict = true
manifest_directory = "data"

[naming]
prefix = "world_sql_content_"
extension = ".sqlite"

[archive]
expected_file_count = 2
`)

	config, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(err, should.BeNil)
	this.So(config.Language, should.Equal, "de")
	this.So(config.Strict, should.BeTrue)
	this.So(config.ManifestDirectory, should.Equal, "data")
	this.So(config.Naming.Extension, should.Equal, ".sqlite")
	this.So(*config.Archive.Files, should.Equal, 2)
	this.So(*config.Archive.Directories, should.Equal, 0)
	this.So(config.MetadataEndpoint, should.Equal, contracts.DefaultConfig().MetadataEndpoint)
}

func (this *ConfigLoaderFixture) TestFlagsOverrideConfigFile() {
	this.writeConfig(`language = "de"` + "\nstrict = true\n")

	config, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml", "-language", "es", "-strict=false"})

	this.So(err, should.BeNil)
	this.So(config.Language, should.Equal, "es")
	this.So(config.Strict, should.BeFalse)
}

func (this *ConfigLoaderFixture) TestConfigFileNotFound() {
	_, err := this.loader.LoadConfig("update", []string{"-config", "missing.toml"})

	this.So(err, should.NotBeNil)
}

func (this *ConfigLoaderFixture) TestConfigFileMalformed() {
	this.writeConfig("language = ")

	_, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(err, should.NotBeNil)
}

func (this *ConfigLoaderFixture) TestConfigFileUnknownKey() {
	this.writeConfig(`langauge = "en"`)

	_, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(errors.Is(err, unknownConfigKeyErr), should.BeTrue)
}

func (this *ConfigLoaderFixture) TestAPIKeyFromEnvironment() {
	this.environment[APIKeyVariable] = "  from-env  "

	config, err := this.loader.LoadConfig("update", nil)

	this.So(err, should.BeNil)
	this.So(config.APIKey, should.Equal, "from-env")
}

func (this *ConfigLoaderFixture) TestAPIKeyFlagWinsOverEnvironment() {
	this.environment[APIKeyVariable] = "from-env"

	config, err := this.loader.LoadConfig("update", []string{"-api-key", "from-flag"})

	this.So(err, should.BeNil)
	this.So(config.APIKey, should.Equal, "from-flag")
}

func (this *ConfigLoaderFixture) TestValidateNegativeMaxRetries() {
	_, err := this.loader.LoadConfig("update", []string{"-max-retry", "-10"})

	this.So(err, should.Equal, maxRetryErr)
}

func (this *ConfigLoaderFixture) TestValidateBlankLanguage() {
	_, err := this.loader.LoadConfig("update", []string{"-language", " "})

	this.So(err, should.Equal, blankLanguageErr)
}

func (this *ConfigLoaderFixture) TestValidateBlankDirectory() {
	_, err := this.loader.LoadConfig("update", []string{"-dir", ""})

	this.So(err, should.Equal, blankManifestDirectoryErr)
}

func (this *ConfigLoaderFixture) TestValidateEndpoint() {
	this.writeConfig(`metadata_endpoint = "ftp://www.bungie.net/manifest"`)

	_, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(errors.Is(err, contracts.ErrInvalidURL), should.BeTrue)
}

func (this *ConfigLoaderFixture) TestValidateBackupExtension() {
	this.writeConfig(`backup_extension = ".content"`)

	_, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(err, should.Equal, backupExtensionErr)
}

func (this *ConfigLoaderFixture) TestValidateTimeouts() {
	this.writeConfig(`download_timeout_seconds = 0`)

	_, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(err, should.Equal, timeoutErr)
}

func (this *ConfigLoaderFixture) TestMossyRequiresAddresses() {
	_, err := this.loader.LoadConfig("mossy", nil)

	this.So(errors.Is(err, mossyAddressErr), should.BeTrue)
	this.So(errors.Is(err, contracts.ErrInvalidURL), should.BeTrue)

	_, err = this.loader.LoadConfig("update", nil)
	this.So(err, should.BeNil)
}

func (this *ConfigLoaderFixture) TestMossyFromConfigFile() {
	this.writeConfig(`
[mossy]
title_url = "https://docs.google.com/spreadsheets/d/sheet/htmlview"
export_url = "https://docs.google.com/spreadsheets/d/sheet/export?format=csv"
directory = "schemas/mossy"
`)

	config, err := this.loader.LoadConfig("mossy", []string{"-config", "mfsync.toml", "-mossy-dir", "data/mossy"})

	this.So(err, should.BeNil)
	this.So(config.Mossy.TitleURL, should.Equal, "https://docs.google.com/spreadsheets/d/sheet/htmlview")
	this.So(config.Mossy.ExportURL, should.Equal, "https://docs.google.com/spreadsheets/d/sheet/export?format=csv")
	this.So(config.Mossy.Directory, should.Equal, "data/mossy")
}

func (this *ConfigLoaderFixture) TestMossyBlankDirectory() {
	this.writeConfig(`
[mossy]
title_url = "https://docs.google.com/spreadsheets/d/sheet/htmlview"
export_url = "https://docs.google.com/spreadsheets/d/sheet/export?format=csv"
directory = " "
`)

	_, err := this.loader.LoadConfig("mossy", []string{"-config", "mfsync.toml"})

	this.So(err, should.Equal, blankMossyDirectoryErr)
}

func (this *ConfigLoaderFixture) TestDefaultConfigRoundTrips() {
	buffer := new(bytes.Buffer)
	this.So(WriteDefaultConfig(buffer), should.BeNil)
	_ = afero.WriteFile(this.storage, "mfsync.toml", buffer.Bytes(), 0644)

	config, err := this.loader.LoadConfig("update", []string{"-config", "mfsync.toml"})

	this.So(err, should.BeNil)
	this.So(config, should.Resemble, contracts.DefaultConfig())

	var decoded contracts.Config
	_, err = toml.Decode(buffer.String(), &decoded)
	this.So(err, should.BeNil)
	this.So(decoded.Naming, should.Resemble, contracts.DefaultConfig().Naming)
}

/////////////////////////////////////////////////////////////////////////////////

type FakeEnvironment map[string]string

func (this FakeEnvironment) LookupEnv(key string) (value string, set bool) {
	value, set = this[key]
	return value, set
}
