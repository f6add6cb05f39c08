package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_SpeedSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(FieldStats{Frame: int64(i * 300), Particles: 100, SpeedMean: 0.001, SpeedMax: 0.002, Coverage: 0.5})
	}

	bookmarks := bd.Check(FieldStats{Frame: 1500, Particles: 100, SpeedMean: 0.004, SpeedMax: 0.01, Coverage: 0.5})
	if !hasBookmark(bookmarks, BookmarkSpeedSurge) {
		t.Error("expected speed_surge bookmark")
	}
}

func TestBookmarkDetector_Frozen(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(FieldStats{Frame: 0, Particles: 4, SpeedMean: 0.01, SpeedMax: 0.02})

	bookmarks := bd.Check(FieldStats{Frame: 300, Particles: 4})
	if !hasBookmark(bookmarks, BookmarkFrozen) {
		t.Fatal("expected frozen bookmark")
	}

	// Staying frozen does not re-trigger.
	bookmarks = bd.Check(FieldStats{Frame: 600, Particles: 4})
	if hasBookmark(bookmarks, BookmarkFrozen) {
		t.Error("frozen bookmark should trigger once per stop")
	}
}

func TestBookmarkDetector_Clustering(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 3; i++ {
		bd.Check(FieldStats{Frame: int64(i * 300), Particles: 100, SpeedMean: 0.01, SpeedMax: 0.02, Coverage: 0.8})
	}

	bookmarks := bd.Check(FieldStats{Frame: 900, Particles: 100, SpeedMean: 0.01, SpeedMax: 0.02, Coverage: 0.4})
	if !hasBookmark(bookmarks, BookmarkClustering) {
		t.Error("expected clustering bookmark")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var triggered int
	for i := 0; i < 12; i++ {
		stats := FieldStats{Frame: int64(i * 300), Particles: 100, SpeedMean: 0.01, SpeedMax: 0.02, Coverage: 0.5}
		if hasBookmark(bd.Check(stats), BookmarkSettled) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("settled triggered %d times, want exactly 1", triggered)
	}
}

func TestBookmarkDetector_NonFiniteOnce(t *testing.T) {
	bd := NewBookmarkDetector(5)

	first := bd.Check(FieldStats{Frame: 0, Particles: 4, NonFinite: 2})
	if !hasBookmark(first, BookmarkNonFinite) {
		t.Fatal("expected non_finite bookmark")
	}
	second := bd.Check(FieldStats{Frame: 300, Particles: 4, NonFinite: 2})
	if hasBookmark(second, BookmarkNonFinite) {
		t.Error("non_finite should be reported once")
	}
}
