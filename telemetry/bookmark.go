package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSpeedSurge BookmarkType = "speed_surge"
	BookmarkFrozen     BookmarkType = "frozen"
	BookmarkClustering BookmarkType = "clustering"
	BookmarkSettled    BookmarkType = "settled"
	BookmarkNonFinite  BookmarkType = "non_finite"
)

// frozenSpeed is the max particle speed below which the swarm counts as stopped.
const frozenSpeed = 1e-6

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the swarm from successive
// FieldStats windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FieldStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	coveragePeak      float64 // peak influence coverage in recent history
	settledWindows    int     // consecutive windows with steady speed
	frozen            bool    // last window was frozen
	nonFiniteReported bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settled detection
	}
	return &BookmarkDetector{
		history:     make([]FieldStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FieldStats) []Bookmark {
	var bookmarks []Bookmark

	if stats.NonFinite > 0 && !bd.nonFiniteReported {
		bd.nonFiniteReported = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkNonFinite,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("%d particles hold non-finite state", stats.NonFinite),
		})
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Speed surge: mean speed > 2x rolling average
		if b := bd.checkSpeedSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Frozen: swarm stopped moving after having moved
		if b := bd.checkFrozen(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Clustering: coverage dropped >30% from recent peak
		if b := bd.checkClustering(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Settled: steady mean speed over 5+ windows
		if b := bd.checkSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Update history
	bd.addToHistory(stats)

	if stats.Coverage > bd.coveragePeak {
		bd.coveragePeak = stats.Coverage
	}
	bd.frozen = stats.SpeedMax < frozenSpeed

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FieldStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []FieldStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]FieldStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkSpeedSurge(stats FieldStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMean
	}
	avg := total / float64(len(history))
	if avg <= frozenSpeed {
		return nil
	}

	if stats.SpeedMean > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkSpeedSurge,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Mean speed %.4g is %.1fx average (%.4g)", stats.SpeedMean, stats.SpeedMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFrozen(stats FieldStats) *Bookmark {
	if bd.frozen || stats.Particles == 0 || stats.SpeedMax >= frozenSpeed {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFrozen,
		Frame:       stats.Frame,
		Description: "All particles stopped moving",
	}
}

func (bd *BookmarkDetector) checkClustering(stats FieldStats) *Bookmark {
	if bd.coveragePeak == 0 {
		return nil
	}

	drop := 1.0 - stats.Coverage/bd.coveragePeak
	if drop > 0.30 {
		// Reset peak after triggering
		oldPeak := bd.coveragePeak
		bd.coveragePeak = stats.Coverage

		return &Bookmark{
			Type:        BookmarkClustering,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Influence coverage fell %.0f%% from %.2f to %.2f", drop*100, oldPeak, stats.Coverage),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats FieldStats) *Bookmark {
	if stats.SpeedMean <= frozenSpeed {
		bd.settledWindows = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h.SpeedMean
	}
	mean := sum / 4

	var variance float64
	for _, h := range history {
		d := h.SpeedMean - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.settledWindows++
	} else {
		bd.settledWindows = 0
	}

	if bd.settledWindows == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSettled,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Mean speed steady near %.4g over 5+ windows", mean),
		}
	}
	return nil
}
