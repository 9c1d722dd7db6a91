package main

import (
	"time"

	"github.com/smartystreets/logging"
	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
	"github.com/smarty/mfsync/core"
	"github.com/smarty/mfsync/remote"
	"github.com/smarty/mfsync/shell"
)

type App struct {
	logger  *logging.Logger
	config  contracts.Config
	locator contracts.RemoteManifestLocator
	updater *core.ManifestUpdater
	mossy   *core.MossySync
}

// NewApp wires the remote clients, the archive installer and the updater for
// a validated config.
func NewApp(config contracts.Config) *App {
	connect := seconds(config.ConnectTimeoutSeconds)
	endpoint, _ := contracts.ParseLocation(config.MetadataEndpoint)

	metadata := remote.NewMetadataClient(remote.NewHTTPClient(connect, seconds(config.MetadataTimeoutSeconds)), endpoint, config.APIKey)
	downloader := remote.NewArchiveDownloader(remote.NewHTTPClient(connect, seconds(config.DownloadTimeoutSeconds)))
	retrying := core.NewRetryDownloader(downloader, config.MaxRetry)

	locator := core.NewManifestLocator(core.NewRetryFetcher(metadata, config.MaxRetry), config)
	installer := shell.NewZipInstaller(retrying, "")
	updater := core.NewManifestUpdater(afero.NewOsFs(), installer, config)

	title, _ := contracts.ParseLocation(config.Mossy.TitleURL)
	export, _ := contracts.ParseLocation(config.Mossy.ExportURL)
	mossy := core.NewMossySync(afero.NewOsFs(), retrying, title, export, config)

	return &App{config: config, locator: locator, updater: updater, mossy: mossy}
}

func (this *App) Update() (core.UpdateReport, error) {
	manifest, err := this.locator.Locate()
	if err != nil {
		return core.UpdateReport{}, err
	}
	this.logger.Printf("[INFO] remote manifest (%s): %s", manifest.Language, manifest.Filename)

	report, err := this.updater.Update(manifest, this.config.ForceUpdate)
	if err != nil {
		return report, err
	}
	this.logger.Printf("[INFO] manifest %s: %s", report.State, report.Manifest.Path())
	return report, nil
}

func (this *App) Check() (core.CheckReport, error) {
	manifest, err := this.locator.Locate()
	if err != nil {
		return core.CheckReport{}, err
	}
	report, err := this.updater.Check(manifest)
	if err != nil {
		return report, err
	}
	if report.Manifest.Exists() {
		this.logger.Printf("[INFO] local manifest %s (checksum verified: %t), remote %s: %s",
			report.Manifest.Name(), report.ChecksumMatches, manifest.Filename, report.State)
	} else {
		this.logger.Printf("[INFO] no local manifest, remote %s: %s", manifest.Filename, report.State)
	}
	return report, nil
}

func (this *App) SyncMossy() (core.MossyReport, error) {
	report, err := this.mossy.Sync(this.config.ForceUpdate)
	if err != nil {
		return report, err
	}
	this.logger.Printf("[INFO] mossy csv %s: %s", report.Version, report.State)
	return report, nil
}

func seconds(count int) time.Duration {
	return time.Duration(count) * time.Second
}
