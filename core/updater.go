package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smartystreets/logging"
	"github.com/spf13/afero"

	"github.com/smarty/mfsync/contracts"
)

type UpdateReport struct {
	State    contracts.UpdateState
	Manifest LocalManifest
}

type CheckReport struct {
	State           contracts.UpdateState
	Manifest        LocalManifest
	ChecksumMatches bool
}

// ManifestUpdater keeps the manifest directory in step with the remote manifest,
// backing up the current file and restoring it when an update fails.
type ManifestUpdater struct {
	logger     *logging.Logger
	fileSystem afero.Fs
	installer  contracts.ArchiveInstaller
	directory  string
	naming     contracts.ManifestNaming
	backupExt  string
	shape      contracts.ArchiveShape
	strict     bool
}

func NewManifestUpdater(fileSystem afero.Fs, installer contracts.ArchiveInstaller, config contracts.Config) *ManifestUpdater {
	return &ManifestUpdater{
		fileSystem: fileSystem,
		installer:  installer,
		directory:  filepath.Clean(config.ManifestDirectory),
		naming:     config.Naming,
		backupExt:  config.BackupExtension,
		shape:      config.Archive,
		strict:     config.Strict,
	}
}

func (this *ManifestUpdater) Update(remote contracts.RemoteManifest, force bool) (UpdateReport, error) {
	local, err := this.inspect()
	if err != nil {
		return UpdateReport{State: contracts.NoLocalManifest, Manifest: local}, err
	}
	state := contracts.NoLocalManifest
	if local.Exists() {
		if err = this.naming.Validate(local.Name()); err != nil {
			return UpdateReport{State: contracts.LocalPresentUpdateNeeded, Manifest: local}, err
		}
		if local.Name() == remote.Filename && !force {
			this.logger.Printf("[INFO] manifest %s is up to date.", local.Name())
			return UpdateReport{State: contracts.LocalPresentNoUpdateNeeded, Manifest: local}, nil
		}
		state = contracts.LocalPresentUpdateNeeded
	}

	snapshot, err := takeSnapshot(this.fileSystem, this.directory)
	if err != nil {
		return UpdateReport{State: state, Manifest: local}, err
	}
	backup, err := this.backup(local, force)
	if err != nil {
		return UpdateReport{State: state, Manifest: local}, err
	}

	this.logger.Printf("[INFO] updating manifest to %s from %s", remote.Filename, remote.Location)
	installed, err := this.install(remote, force, backup)
	if err != nil {
		return this.rollback(snapshot, local, backup, err)
	}
	this.logger.Printf("[INFO] manifest %s committed.", installed.Name())
	return UpdateReport{State: contracts.Committed, Manifest: installed}, nil
}

// Check reports whether Update would replace the local manifest without
// writing anything.
func (this *ManifestUpdater) Check(remote contracts.RemoteManifest) (CheckReport, error) {
	if _, err := this.fileSystem.Stat(this.directory); errors.Is(err, os.ErrNotExist) {
		return CheckReport{State: contracts.NoLocalManifest}, nil
	}
	local, err := InspectManifestDirectory(this.fileSystem, this.directory, this.naming)
	if err != nil {
		return CheckReport{State: contracts.NoLocalManifest, Manifest: local}, err
	}
	if !local.Exists() {
		return CheckReport{State: contracts.NoLocalManifest, Manifest: local}, nil
	}

	report := CheckReport{State: contracts.LocalPresentUpdateNeeded, Manifest: local}
	if local.Name() == remote.Filename {
		report.State = contracts.LocalPresentNoUpdateNeeded
	}
	report.ChecksumMatches, err = local.ChecksumMatches()
	if err != nil {
		this.logger.Printf("[WARN] could not verify local manifest checksum: %s", err)
	}
	return report, nil
}

func (this *ManifestUpdater) inspect() (LocalManifest, error) {
	if _, err := this.fileSystem.Stat(this.directory); errors.Is(err, os.ErrNotExist) {
		if err = this.fileSystem.MkdirAll(this.directory, 0755); err != nil {
			return LocalManifest{}, err
		}
	}
	return InspectManifestDirectory(this.fileSystem, this.directory, this.naming)
}

func (this *ManifestUpdater) backup(local LocalManifest, force bool) (string, error) {
	if !local.Exists() {
		return "", nil
	}
	backup, err := backupFile(this.fileSystem, local.Path(), this.backupExt, force)
	if err != nil {
		return "", err
	}
	this.logger.Printf("[INFO] backed up %s to %s", local.Name(), filepath.Base(backup))
	return backup, nil
}

func (this *ManifestUpdater) install(remote contracts.RemoteManifest, force bool, backup string) (LocalManifest, error) {
	err := this.installer.Install(contracts.InstallationRequest{
		RemoteAddress:       remote.Location,
		LocalPath:           this.directory,
		ExpectedFiles:       this.shape.Files,
		ExpectedDirectories: this.shape.Directories,
		Overwrite:           force,
	})
	if err != nil {
		return LocalManifest{}, err
	}

	installed, err := InspectManifestDirectory(this.fileSystem, this.directory, this.naming)
	if err != nil {
		return installed, err
	}
	if !installed.Exists() {
		return installed, fmt.Errorf("%w: archive from %s held no %s file",
			contracts.ErrManifestNotFound, remote.Location, this.naming.Extension)
	}
	expected, err := installed.ExpectedChecksum()
	if err != nil {
		return installed, err
	}
	computed, err := installed.ComputedChecksum()
	if err != nil {
		return installed, err
	}
	if err = AssertChecksum(expected, computed, this.strict, this.logger); err != nil {
		return installed, err
	}

	keep := []string{installed.Path()}
	if backup != "" {
		keep = append(keep, backup)
	}
	if err = RemoveStaleSiblings(this.fileSystem, this.directory, keep...); err != nil {
		return installed, err
	}
	if backup != "" {
		if err = this.fileSystem.Remove(backup); err != nil {
			return installed, err
		}
	}
	return installed, nil
}

func (this *ManifestUpdater) rollback(snapshot directorySnapshot, original LocalManifest, backup string, cause error) (UpdateReport, error) {
	this.logger.Printf("[WARN] manifest update failed, rolling back: %s", cause)

	if err := snapshot.Restore(backup, original.Path()); err != nil {
		this.logger.Printf("[WARN] rollback incomplete: %s", err)
		cause = errors.Join(cause, fmt.Errorf("rollback: %w", err))
	}

	restored, err := InspectManifestDirectory(this.fileSystem, this.directory, this.naming)
	if err != nil {
		restored = original
	}
	return UpdateReport{State: contracts.RolledBack, Manifest: restored}, cause
}
