// Package ban tracks rate limit strikes per client and bans clients that
// collect too many of them within a window.
package ban

import (
	"context"
	"time"

	"github.com/JesseBremer/journal-mate/internal/logger"
)

type Policy struct {
	MaxStrikes   int
	StrikeWindow time.Duration
	BanDuration  time.Duration
}

// Tracker records strikes and answers whether a target is banned. Targets are
// usually client IPs.
type Tracker interface {
	IsBanned(ctx context.Context, target string) (bool, error)
	// Strike records one violation on route and reports whether the target
	// is now banned.
	Strike(ctx context.Context, target, route string) (bool, error)
}

type BanLogEntry struct {
	Target  string    `json:"target"`
	Route   string    `json:"route"`
	Strikes int       `json:"strikes"`
	Time    time.Time `json:"time"`
}

func logBan(entry BanLogEntry, duration time.Duration) {
	logger.Warningf("ban: %s blocked for %s after %d strikes on %s", entry.Target, duration, entry.Strikes, entry.Route)
}
