package track

import "testing"

type fakeExtractor struct{}

func (fakeExtractor) Identifier() string { return "fake" }

func TestResolveMetadataReturnsSameRecord(t *testing.T) {
	raw := &struct{ ID string }{ID: "abc"}
	tr := New(Info{Title: "x"}, raw)

	got, ok := tr.ResolveMetadata().(*struct{ ID string })
	if !ok || got != raw {
		t.Fatalf("ResolveMetadata() = %v, want %p", tr.ResolveMetadata(), raw)
	}
}

func TestPlaylistAddSetsBackReference(t *testing.T) {
	p := &Playlist{ID: "PL1"}
	a := New(Info{Title: "a"}, nil)
	b := New(Info{Title: "b"}, nil)
	a.Extractor = fakeExtractor{}

	p.Add(a, b)

	if len(p.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(p.Tracks))
	}
	for i, tr := range p.Tracks {
		if tr.Playlist != p {
			t.Errorf("track %d playlist = %p, want %p", i, tr.Playlist, p)
		}
	}
}

func TestEmptyResult(t *testing.T) {
	r := Empty()
	if r.Playlist != nil {
		t.Errorf("Playlist = %v, want nil", r.Playlist)
	}
	if r.Tracks == nil || !r.IsEmpty() {
		t.Errorf("Tracks = %v, want empty non-nil slice", r.Tracks)
	}
}

func TestHasURL(t *testing.T) {
	history := []*Track{
		New(Info{URL: "https://www.youtube.com/watch?v=aaaaaaaaaaa"}, nil),
		nil,
	}
	if !HasURL(history, "https://www.youtube.com/watch?v=aaaaaaaaaaa") {
		t.Error("expected url to be found")
	}
	if HasURL(history, "https://www.youtube.com/watch?v=bbbbbbbbbbb") {
		t.Error("unexpected match")
	}
}

func TestString(t *testing.T) {
	if got := New(Info{Title: "Song", Author: "Band"}, nil).String(); got != "Song by Band" {
		t.Errorf("String() = %q", got)
	}
	if got := New(Info{Title: "Song"}, nil).String(); got != "Song" {
		t.Errorf("String() = %q", got)
	}
}
