package config

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tacet-cli/tacet/filesystem"
	"github.com/tacet-cli/tacet/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("detect.interval_ms")
			So(result, ShouldEqual, "detect_interval_ms")
		})

		Convey("Field env names carry the application prefix", func() {
			field := Default[key.DetectInterval]
			So(field.Env(), ShouldEqual, "TACET_DETECT_INTERVAL_MS")
			So(field.Aliases, ShouldContain, "POLLING_INTERVAL")
		})
	})
}

func TestLegacyEnvironment(t *testing.T) {
	Convey("Given the unprefixed variables used by earlier releases", t, func() {
		t.Setenv("POLLING_INTERVAL", "1500")
		t.Setenv("VIDEO_KEYWORDS", "Plex, Jellyfin ,,Crunchyroll")
		So(Setup(), ShouldBeNil)

		Convey("The polling interval is read in milliseconds", func() {
			So(Millis(key.DetectInterval), ShouldEqual, 1500*time.Millisecond)
		})

		Convey("The keyword list is split on commas and trimmed", func() {
			So(List(key.DetectKeywords), ShouldResemble, []string{"Plex", "Jellyfin", "Crunchyroll"})
		})
	})

	Convey("Given keywords containing spaces", t, func() {
		t.Setenv("VIDEO_KEYWORDS", "Prime Video,Disney+")
		So(Setup(), ShouldBeNil)

		Convey("Only commas separate keywords", func() {
			So(List(key.DetectKeywords), ShouldResemble, []string{"Prime Video", "Disney+"})
		})
	})

	Convey("Given an unparsable polling interval", t, func() {
		t.Setenv("POLLING_INTERVAL", "soon")
		So(Setup(), ShouldBeNil)

		Convey("The default is used", func() {
			So(Millis(key.DetectInterval), ShouldEqual, 5*time.Second)
		})
	})
}

func TestKeywordDefault(t *testing.T) {
	Convey("Given no keyword override", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("The default list is used", func() {
			So(List(key.DetectKeywords), ShouldResemble, []string{"YouTube", "Netflix", "Vimeo", "Twitch", "Video"})
		})
	})
}

func TestList(t *testing.T) {
	Convey("Given a list key set as a slice", t, func() {
		viper.Set(key.DetectKeywords, []string{"YouTube", " Netflix "})
		defer viper.Set(key.DetectKeywords, Default[key.DetectKeywords].Value)

		So(List(key.DetectKeywords), ShouldResemble, []string{"YouTube", "Netflix"})
	})
}
