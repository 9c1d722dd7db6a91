package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"
	"github.com/smartystreets/logging"

	"github.com/smarty/mfsync/contracts"
)

func TestManifestLocatorFixture(t *testing.T) {
	gunit.Run(new(ManifestLocatorFixture), t)
}

type ManifestLocatorFixture struct {
	*gunit.Fixture
	fetcher *FakeFetcher
	config  contracts.Config
	name    string
}

func (this *ManifestLocatorFixture) Setup() {
	this.fetcher = &FakeFetcher{}
	this.config = contracts.DefaultConfig()
	this.name = manifestName("manifest")
}

func (this *ManifestLocatorFixture) locator() *ManifestLocator {
	locator := NewManifestLocator(this.fetcher, this.config)
	locator.logger = logging.Capture()
	return locator
}

func (this *ManifestLocatorFixture) respond(response string) {
	this.fetcher.envelopes = []contracts.Envelope{{ErrorCode: 1, Response: json.RawMessage(response)}}
}

func (this *ManifestLocatorFixture) respondWithPaths(paths map[string]string) {
	raw, _ := json.Marshal(map[string]any{"version": "1", "mobileWorldContentPaths": paths})
	this.respond(string(raw))
}

func (this *ManifestLocatorFixture) TestLocate() {
	this.respondWithPaths(map[string]string{
		"en": "/common/destiny_content/sqlite/en/" + this.name,
		"fr": "/common/destiny_content/sqlite/fr/other.content",
	})

	manifest, err := this.locator().Locate()

	this.So(err, should.BeNil)
	this.So(manifest.Language, should.Equal, "en")
	this.So(manifest.Path, should.Equal, "/common/destiny_content/sqlite/en/"+this.name)
	this.So(manifest.Filename, should.Equal, this.name)
	this.So(manifest.Paths, should.HaveLength, 2)
	this.So(manifest.Location.URL, should.Equal, "https://www.bungie.net/common/destiny_content/sqlite/en/"+this.name)
	this.So(manifest.Location.Base, should.Equal, "https://www.bungie.net")
}

func (this *ManifestLocatorFixture) TestClosestLanguage() {
	this.config.Language = "en-GB"
	this.respondWithPaths(map[string]string{"en": "/common/destiny_content/sqlite/en/" + this.name})

	manifest, err := this.locator().Locate()

	this.So(err, should.BeNil)
	this.So(manifest.Language, should.Equal, "en")
}

func (this *ManifestLocatorFixture) TestFetchFailurePropagates() {
	this.fetcher.errors = []error{&contracts.AuthError{Code: 2101}}

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrAuth), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestMissingResponseKey() {
	this.respond(`{"version": "1"}`)

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrMalformedResponse), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestResponseIsNotAnObject() {
	this.respond(`["mobileWorldContentPaths"]`)

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrMalformedResponse), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestLanguagePathsOfWrongType() {
	this.respond(`{"mobileWorldContentPaths": {"en": 42}}`)

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrMalformedResponse), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestNestedResponsePath() {
	this.config.ResponsePath = []string{"content", "paths"}
	this.respond(`{"content": {"paths": {"en": "/common/destiny_content/sqlite/en/` + this.name + `"}}}`)

	manifest, err := this.locator().Locate()

	this.So(err, should.BeNil)
	this.So(manifest.Filename, should.Equal, this.name)
}

func (this *ManifestLocatorFixture) TestLanguageUnavailable() {
	this.config.Language = "ko"
	this.respondWithPaths(map[string]string{"en": "/common/destiny_content/sqlite/en/" + this.name})

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrLanguageUnavailable), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestUnexpectedDirectoryStrict() {
	this.config.Strict = true
	this.respondWithPaths(map[string]string{"en": "/elsewhere/" + this.name})

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrUnexpectedPathFormat), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestUnexpectedDirectoryLenient() {
	this.respondWithPaths(map[string]string{"en": "/elsewhere/" + this.name})
	locator := this.locator()

	manifest, err := locator.Locate()

	this.So(err, should.BeNil)
	this.So(manifest.Path, should.Equal, "/elsewhere/"+this.name)
	this.So(locator.logger.Log.String(), should.ContainSubstring, "[WARN] remote path")
}

func (this *ManifestLocatorFixture) TestFilenameMustMatchNaming() {
	this.respondWithPaths(map[string]string{"en": "/common/destiny_content/sqlite/en/" + strings.ToUpper("world.content")})

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrNamingMismatch), should.BeTrue)
}

func (this *ManifestLocatorFixture) TestPathCannotEscapeBase() {
	this.respondWithPaths(map[string]string{"en": "/common/destiny_content/sqlite/../../" + this.name})

	_, err := this.locator().Locate()

	this.So(errors.Is(err, contracts.ErrInvalidURL), should.BeTrue)
}
