package y2mate

import (
	"sort"
)

// Mode selects which y2mate service resolves the options.
type Mode int

const (
	// ModeDownloader uses the general YouTube downloader (mp4, mp3, m4a tabs).
	ModeDownloader Mode = iota
	// ModeConverter uses the YouTube MP3 converter (mp3 only, no sizes).
	ModeConverter
)

func (m Mode) String() string {
	if m == ModeConverter {
		return "Y2mate Youtube MP3 Converter"
	}
	return "Y2mate Youtube Downloader"
}

// Option is one downloadable variant of a format family.
type Option struct {
	Quality int
	Size    string
	Type    string
}

// HasSize reports whether the source published a size for this option.
func (o Option) HasSize() bool {
	return o.Size != ""
}

// Options is the resolved set of formats for one video.
// Every family present in Formats holds at least one Option.
type Options struct {
	Formats map[string][]Option
	Token   string
	Title   string
	Mode    Mode
}

var familyOrder = map[string]int{"mp4": 0, "mp3": 1, "m4a": 2}

// Families returns the format family names in display order.
func (o Options) Families() []string {
	names := make([]string, 0, len(o.Formats))
	for name := range o.Formats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := familyOrder[names[i]]
		rj, jok := familyOrder[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// Has reports whether the format family is available.
func (o Options) Has(format string) bool {
	_, ok := o.Formats[format]
	return ok
}

// IsAudioFormat reports whether files of this family go to the audio folder.
func IsAudioFormat(format string) bool {
	return format == "mp3" || format == "m4a"
}

// Formats lists the family names accepted on the command line.
var Formats = []string{"m4a", "mp3", "mp4"}
