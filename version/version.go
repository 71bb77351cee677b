// Package version provides application version tracking and update discovery.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/tacet-cli/tacet/constant"
	"github.com/tacet-cli/tacet/filesystem"
	"github.com/tacet-cli/tacet/network"
	"github.com/tacet-cli/tacet/util"
	"github.com/tacet-cli/tacet/where"
)

// releasesURL is a variable so tests can point it at a local server.
var releasesURL = fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", constant.Repository)

var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the most recent released version, without the "v" prefix.
// Results are cached for two days to stay clear of GitHub rate limits.
func Latest() (version string, err error) {
	ver, expired, err := versionCacher.Get()
	if err != nil {
		return "", err
	}

	if !expired && ver != "" {
		return ver, nil
	}

	resp, err := network.Client.Get(releasesURL)
	if err != nil {
		return
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	version = strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher.Set(version)
	return
}
