package poll

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/phapi"
	"github.com/atg25/ProductHunt-Scraper/internal/scrape"
	"github.com/atg25/ProductHunt-Scraper/internal/track"
)

func cfgWithStrategy(strategy string) config.Config {
	var cfg config.Config
	cfg.Tracker.Strategy = strategy
	cfg.Tracker.SearchTerm = "AI"
	cfg.Tracker.Limit = 10
	cfg.Retry.MaxAttempts = 1
	return cfg
}

func TestBuildProviderAPIWithToken(t *testing.T) {
	p, err := BuildProvider(cfgWithStrategy("api"), "token", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*phapi.Client); !ok {
		t.Fatalf("provider = %T", p)
	}
}

func TestBuildProviderAPIWithoutToken(t *testing.T) {
	var warned []string
	p, err := BuildProvider(cfgWithStrategy("api"), "", func(msg string) { warned = append(warned, msg) })
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(track.NoTokenProvider); !ok {
		t.Fatalf("provider = %T", p)
	}
	if len(warned) != 1 {
		t.Fatalf("warned = %v", warned)
	}
}

func TestBuildProviderScraper(t *testing.T) {
	p, err := BuildProvider(cfgWithStrategy("scraper"), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*scrape.Scraper); !ok {
		t.Fatalf("provider = %T", p)
	}
}

func TestBuildProviderAutoWithoutToken(t *testing.T) {
	var warned []string
	p, err := BuildProvider(cfgWithStrategy("auto"), "", func(msg string) { warned = append(warned, msg) })
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*track.Fallback); !ok {
		t.Fatalf("provider = %T", p)
	}
	if len(warned) != 1 || warned[0] != track.MissingTokenMsg {
		t.Fatalf("warned = %v", warned)
	}
}

func TestBuildProviderUnknownStrategy(t *testing.T) {
	if _, err := BuildProvider(cfgWithStrategy("carrier-pigeon"), "", nil); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestRunOncePropagatesConfigError(t *testing.T) {
	_, _, err := RunOnce(context.Background(), cfgWithStrategy("carrier-pigeon"), Deps{})
	if err == nil {
		t.Fatal("expected unknown strategy to propagate")
	}
}

func TestRunOnceRespectsLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "run.lock")
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer held.Unlock()

	_, _, err = RunOnce(context.Background(), cfgWithStrategy("scraper"), Deps{LockPath: lockPath})
	if err != ErrRunInProgress {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
}
