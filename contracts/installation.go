package contracts

type InstallationRequest struct {
	RemoteAddress       Location
	LocalPath           string
	ExpectedFiles       *int
	ExpectedDirectories *int
	Overwrite           bool
}

type ArchiveInstaller interface {
	Install(request InstallationRequest) error
}
