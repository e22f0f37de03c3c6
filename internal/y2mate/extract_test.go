package y2mate

import (
	"errors"
	"reflect"
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := parseFragment(fragment)
	if err != nil {
		t.Fatalf("parseFragment: %v", err)
	}
	return doc
}

func TestExtractOptionsVideoTab(t *testing.T) {
	doc := mustParse(t, downloaderFragment)
	got, err := ExtractOptions(find(doc, byID("mp4")))
	if err != nil {
		t.Fatalf("ExtractOptions unexpected error: %v", err)
	}
	want := []Option{
		{Quality: 1080, Size: "120.5 MB", Type: "mp4"},
		{Quality: 720, Size: "60.1 MB", Type: "mp4"},
		{Quality: 360, Size: "20.3 MB", Type: "mp4"},
		{Quality: 144, Size: "", Type: "mp4"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractOptions = %+v, want %+v", got, want)
	}
	if got[3].HasSize() {
		t.Fatalf("empty size cell should report no size")
	}
}

func TestExtractOptionsSkipsHeaderAndFooter(t *testing.T) {
	doc := mustParse(t, `<table>
		<tr><th>head</th></tr>
		<tr><td>a</td><td>1 MB</td><td><a data-ftype="mp4" data-fquality="480">x</a></td></tr>
		<tr><td>b</td><td>2 MB</td><td><a data-ftype="mp4" data-fquality="240p">x</a></td></tr>
		<tr><td>foot</td></tr>
	</table>`)
	got, err := ExtractOptions(find(doc, byTag("table")))
	if err != nil {
		t.Fatalf("ExtractOptions unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Quality != 480 || got[1].Quality != 240 {
		t.Fatalf("expected the two body rows, got %+v", got)
	}
}

func TestExtractOptionsAudioButtonCell(t *testing.T) {
	doc := mustParse(t, downloaderFragment)
	got, err := ExtractOptions(find(doc, byID("audio")))
	if err != nil {
		t.Fatalf("ExtractOptions unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Type != "m4a" || got[1].Type != "mp3" {
		t.Fatalf("unexpected audio options %+v", got)
	}
}

func TestExtractOptionsNilTab(t *testing.T) {
	got, err := ExtractOptions(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("ExtractOptions(nil) = %#v, %v; want empty slice", got, err)
	}
}

func TestExtractOptionsMalformedRowSkipped(t *testing.T) {
	doc := mustParse(t, `<table>
		<tr><th>head</th></tr>
		<tr><td>a</td><td>1 MB</td><td><a data-ftype="mp4">no quality</a></td></tr>
		<tr><td>only one cell</td></tr>
		<tr><td>c</td><td>3 MB</td><td><a data-ftype="mp4" data-fquality="high">x</a></td></tr>
		<tr><td>d</td><td>4 MB</td><td><a data-ftype="mp4" data-fquality="1080pHFR">x</a></td></tr>
		<tr><td>foot</td></tr>
	</table>`)
	got, err := ExtractOptions(find(doc, byTag("table")))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
	if len(got) != 1 || got[0].Quality != 1080 {
		t.Fatalf("expected the single well-formed row, got %+v", got)
	}
}

func TestCustomTableLayout(t *testing.T) {
	doc := mustParse(t, `<table>
		<tr><td><a data-ftype="mp4" data-fquality="720">x</a></td><td>9 MB</td></tr>
	</table>`)
	layout := TableLayout{HeaderRows: 0, FooterRows: 0, SizeCell: 1, DetailsCell: 0}
	got, err := layout.Extract(find(doc, byTag("table")))
	if err != nil {
		t.Fatalf("Extract unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Size != "9 MB" || got[0].Quality != 720 {
		t.Fatalf("unexpected options %+v", got)
	}
}

func TestParseQuality(t *testing.T) {
	tests := map[string]int{"1080p": 1080, "720": 720, "1080pHFR": 1080, " 360p ": 360}
	for raw, want := range tests {
		got, err := ParseQuality(raw)
		if err != nil || got != want {
			t.Fatalf("ParseQuality(%q) = %d, %v; want %d", raw, got, err, want)
		}
	}
	if _, err := ParseQuality("auto"); err == nil {
		t.Fatal("expected error for non-numeric quality")
	}
}

func TestExtractConverterOptions(t *testing.T) {
	doc := mustParse(t, converterFragment)
	got, err := extractConverterOptions(doc)
	if err != nil {
		t.Fatalf("extractConverterOptions unexpected error: %v", err)
	}
	want := []Option{{Quality: 128, Type: "mp3"}, {Quality: 192, Type: "mp3"}, {Quality: 320, Type: "mp3"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractConverterOptions = %+v, want %+v", got, want)
	}
}
