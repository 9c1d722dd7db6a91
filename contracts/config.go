package contracts

type Config struct {
	APIKey                  string         `toml:"api_key"`
	Language                string         `toml:"language"`
	MetadataEndpoint        string         `toml:"metadata_endpoint"`
	ContentBaseAddress      string         `toml:"content_base_address"`
	ResponsePath            []string       `toml:"response_path"`
	ExpectedRemoteDirectory string         `toml:"expected_remote_directory"`
	Naming                  ManifestNaming `toml:"naming"`
	ManifestDirectory       string         `toml:"manifest_directory"`
	BackupExtension         string         `toml:"backup_extension"`
	Archive                 ArchiveShape   `toml:"archive"`
	Strict                  bool           `toml:"strict"`
	ForceUpdate             bool           `toml:"force_update"`
	MaxRetry                int            `toml:"max_retry"`
	ConnectTimeoutSeconds   int            `toml:"connect_timeout_seconds"`
	MetadataTimeoutSeconds  int            `toml:"metadata_timeout_seconds"`
	DownloadTimeoutSeconds  int            `toml:"download_timeout_seconds"`
	Mossy                   MossyConfig    `toml:"mossy"`
}

// MossyConfig locates the community version sheet: the page whose <title>
// carries the current version and the CSV export of that sheet.
type MossyConfig struct {
	TitleURL  string `toml:"title_url"`
	ExportURL string `toml:"export_url"`
	Directory string `toml:"directory"`
}

// ArchiveShape holds the expected entry counts of the manifest archive.
// A nil count is not checked.
type ArchiveShape struct {
	Files       *int `toml:"expected_file_count"`
	Directories *int `toml:"expected_dir_count"`
}

func DefaultConfig() Config {
	return Config{
		Language:                "en",
		MetadataEndpoint:        "https://www.bungie.net/Platform/Destiny/Manifest",
		ContentBaseAddress:      "https://www.bungie.net",
		ResponsePath:            []string{"mobileWorldContentPaths"},
		ExpectedRemoteDirectory: "/common/destiny_content/sqlite/",
		Naming: ManifestNaming{
			Prefix:    "world_sql_content_",
			Extension: ".content",
		},
		ManifestDirectory: "manifest",
		BackupExtension:   ".bak",
		Archive: ArchiveShape{
			Files:       Count(1),
			Directories: Count(0),
		},
		ConnectTimeoutSeconds:  3,
		MetadataTimeoutSeconds: 5,
		DownloadTimeoutSeconds: 10,
		Mossy: MossyConfig{
			Directory: "mossy",
		},
	}
}

func Count(value int) *int { return &value }
