package downloader

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrTaggingUnsupported is returned for containers that cannot carry a title.
var ErrTaggingUnsupported = errors.New("title tagging not supported for this file type")

// TagTitle writes title into the saved file. mp3 files get an ID3v2 frame;
// m4a and mp4 are remuxed through ffmpeg when it is on PATH.
func TagTitle(path, title string) error {
	if path == "" || strings.TrimSpace(title) == "" {
		return nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return tagID3Title(path, title)
	case ".m4a", ".mp4":
		if !ffmpegAvailable() {
			return fmt.Errorf("ffmpeg not found, skipping %s title tag", ext)
		}
		return tagFFmpegTitle(path, title)
	default:
		return ErrTaggingUnsupported
	}
}

func tagID3Title(path, title string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(title)
	return tag.Save()
}

func ffmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

func tagFFmpegTitle(path, title string) error {
	tmp := filepath.Join(filepath.Dir(path), ".tmp_tagged_"+filepath.Base(path))
	err := ffmpeg.Input(path).
		Output(tmp, ffmpeg.KwArgs{"c": "copy", "metadata": "title=" + title}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("embedding title for %s: %w", filepath.Ext(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing file with tagged copy: %w", err)
	}
	return nil
}
