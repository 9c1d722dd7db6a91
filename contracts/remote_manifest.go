package contracts

// RemoteManifest is where the vendor currently publishes the manifest.
type RemoteManifest struct {
	Paths    map[string]string // language code -> remote relative path
	Language string
	Path     string
	Filename string
	Location Location
}

type RemoteManifestLocator interface {
	Locate() (RemoteManifest, error)
}
