package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/smartystreets/logging"
	"github.com/spf13/afero"
	"golang.org/x/net/html"

	"github.com/smarty/mfsync/contracts"
)

const (
	mossyPrefix      = "mossy_csv_"
	mossyExtension   = ".csv"
	maxSheetPageSize = 8 * 1024 * 1024
)

var (
	sheetVersionPattern  = regexp.MustCompile(`^v[1-9]\d*(\.[1-9]\d*)*$`)
	mossyFilenamePattern = regexp.MustCompile(`^` + mossyPrefix + `v[1-9]\d*(\.[1-9]\d*)*` + regexp.QuoteMeta(mossyExtension) + `$`)
)

// ParseSheetVersion returns the single version-like word (v1, v2.3) of the
// page's <title> element.
func ParseSheetVersion(page io.Reader) (string, error) {
	document, err := html.Parse(page)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrMalformedResponse, err)
	}
	title, found := findTitle(document)
	if !found {
		return "", fmt.Errorf("%w: page has no <title>", contracts.ErrVersionNotFound)
	}

	var versions []string
	for _, word := range strings.Fields(title) {
		if sheetVersionPattern.MatchString(word) {
			versions = append(versions, word)
		}
	}
	switch len(versions) {
	case 0:
		return "", fmt.Errorf("%w: title %q", contracts.ErrVersionNotFound, title)
	case 1:
		return versions[0], nil
	default:
		return "", fmt.Errorf("%w: title %q contains %s", contracts.ErrAmbiguousVersion, title, strings.Join(versions, ", "))
	}
}

func findTitle(node *html.Node) (string, bool) {
	if node.Type == html.ElementNode && node.Data == "title" {
		var text strings.Builder
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				text.WriteString(child.Data)
			}
		}
		return text.String(), true
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if title, found := findTitle(child); found {
			return title, true
		}
	}
	return "", false
}

// MossyCSV is the installed sheet export, if any.
type MossyCSV struct {
	path string
}

// InspectMossyDirectory finds the one file named mossy_csv_<version>.csv.
func InspectMossyDirectory(fileSystem afero.Fs, directory string) (MossyCSV, error) {
	var current MossyCSV
	entries, err := afero.ReadDir(fileSystem, directory)
	if err != nil {
		return current, err
	}
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || !mossyFilenamePattern.MatchString(entry.Name()) {
			continue
		}
		candidate := filepath.Join(directory, entry.Name())
		if current.path != "" {
			return current, &contracts.TooManyCandidatesError{Directory: directory, First: current.path, Second: candidate}
		}
		current.path = candidate
	}
	return current, nil
}

func (this MossyCSV) Exists() bool { return this.path != "" }
func (this MossyCSV) Path() string { return this.path }

func (this MossyCSV) Version() string {
	if !this.Exists() {
		return ""
	}
	stem := strings.TrimSuffix(filepath.Base(this.path), mossyExtension)
	return stem[strings.LastIndex(stem, "_")+1:]
}

type MossyReport struct {
	State   contracts.UpdateState
	Version string
	CSV     MossyCSV
}

// MossySync keeps a local copy of the Mossy version sheet export, named after
// the version advertised in the sheet's page title.
type MossySync struct {
	logger     *logging.Logger
	fileSystem afero.Fs
	downloader contracts.Downloader
	title      contracts.Location
	export     contracts.Location
	directory  string
	backupExt  string
}

func NewMossySync(fileSystem afero.Fs, downloader contracts.Downloader, title, export contracts.Location, config contracts.Config) *MossySync {
	return &MossySync{
		fileSystem: fileSystem,
		downloader: downloader,
		title:      title,
		export:     export,
		directory:  filepath.Clean(config.Mossy.Directory),
		backupExt:  config.BackupExtension,
	}
}

func (this *MossySync) Sync(force bool) (MossyReport, error) {
	if _, err := this.fileSystem.Stat(this.directory); errors.Is(err, os.ErrNotExist) {
		if err = this.fileSystem.MkdirAll(this.directory, 0755); err != nil {
			return MossyReport{}, err
		}
	}
	current, err := InspectMossyDirectory(this.fileSystem, this.directory)
	if err != nil {
		return MossyReport{CSV: current}, err
	}
	state := contracts.NoLocalManifest
	if current.Exists() {
		state = contracts.LocalPresentUpdateNeeded
	}

	latest, err := this.latestVersion()
	if err != nil {
		return MossyReport{State: state, CSV: current}, err
	}
	if current.Version() == latest && !force {
		this.logger.Printf("[INFO] mossy csv %s is up to date.", latest)
		return MossyReport{State: contracts.LocalPresentNoUpdateNeeded, Version: latest, CSV: current}, nil
	}

	snapshot, err := takeSnapshot(this.fileSystem, this.directory)
	if err != nil {
		return MossyReport{State: state, Version: latest, CSV: current}, err
	}
	backup := ""
	if current.Exists() {
		if backup, err = backupFile(this.fileSystem, current.Path(), this.backupExt, force); err != nil {
			return MossyReport{State: state, Version: latest, CSV: current}, err
		}
	}

	this.logger.Printf("[INFO] updating mossy csv to %s from %s", latest, this.export)
	installed, err := this.install(latest)
	if err == nil && backup != "" {
		err = this.fileSystem.Remove(backup)
	}
	if err != nil {
		this.logger.Printf("[WARN] mossy csv update failed, rolling back: %s", err)
		if restoreErr := snapshot.Restore(backup, current.Path()); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", restoreErr))
		}
		return MossyReport{State: contracts.RolledBack, Version: current.Version(), CSV: current}, err
	}
	return MossyReport{State: contracts.Committed, Version: latest, CSV: installed}, nil
}

func (this *MossySync) latestVersion() (string, error) {
	body, err := this.downloader.Download(this.title)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()
	return ParseSheetVersion(io.LimitReader(body, maxSheetPageSize))
}

func (this *MossySync) install(version string) (installed MossyCSV, err error) {
	body, err := this.downloader.Download(this.export)
	if err != nil {
		return installed, err
	}
	defer func() { _ = body.Close() }()

	file, err := afero.TempFile(this.fileSystem, this.directory, ".mossy-*.part")
	if err != nil {
		return installed, err
	}
	_, copyErr := io.CopyBuffer(file, body, make([]byte, checksumChunkSize))
	if err = errors.Join(copyErr, file.Close()); err != nil {
		return installed, err
	}

	target := filepath.Join(this.directory, mossyPrefix+version+mossyExtension)
	if err = this.fileSystem.Rename(file.Name(), target); err != nil {
		return installed, err
	}
	return MossyCSV{path: target}, nil
}
