// Package config implements C13: loading and merging filesieve's
// configuration (spec §6 Configuration) from a two-tier KDL file pair
// plus an optional .env overlay, the way the teacher layers
// ~/.lci.kdl under a project's .lci.kdl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/joho/godotenv"

	"github.com/filesieve/filesieve/internal/model"
)

const (
	userConfigName    = ".fsieve.kdl"
	projectConfigName = ".fsieve.kdl"
	envFileName       = ".env"
)

// Config holds every field of spec.md §6 Configuration, with the
// documented defaults applied by Default().
type Config struct {
	IndexPath string

	ThreadCount            int
	MaxFileSizeForContent  int64
	EnableContentSearch    bool
	EnableFuzzySearch      bool
	FuzzyThreshold         float64
	CacheSize              int
	BloomFilterCapacity    uint64
	BloomFilterErrorRate   float64
	MaxSearchResults       int
	BatchSize              int
	FollowSymlinks         bool
	IndexHiddenFiles       bool
	ExclusionPatterns      []model.ExclusionRule
	WatchDebounceMs        int
	EnableAccessTracking   bool
	DBPoolSize             int
}

// Default returns the Configuration with every documented default
// applied (spec.md §6).
func Default() *Config {
	return &Config{
		ThreadCount:           2 * runtime.NumCPU(),
		MaxFileSizeForContent: 10 * 1024 * 1024,
		EnableContentSearch:   false,
		EnableFuzzySearch:     true,
		FuzzyThreshold:        0.7,
		CacheSize:             1000,
		BloomFilterCapacity:   10_000_000,
		BloomFilterErrorRate:  1e-4,
		MaxSearchResults:      1000,
		BatchSize:             1000,
		FollowSymlinks:        false,
		IndexHiddenFiles:      false,
		ExclusionPatterns:     model.DefaultExclusionRules(),
		WatchDebounceMs:       500,
		EnableAccessTracking:  true,
		DBPoolSize:            10,
	}
}

// Load builds a Config for projectRoot: defaults, overlaid by a
// user-level ~/.fsieve.kdl, overlaid by a project-level
// <projectRoot>/.fsieve.kdl, then overlaid by a .env file beside the
// project config (fill-only-if-unset — it never clobbers a value an
// explicit KDL file already set). Exclusion patterns from each tier
// append rather than replace, mirroring ExclusionRule's additive,
// persisted semantics. Missing files at any tier are not an error.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		if err := mergeKDLFile(cfg, filepath.Join(home, userConfigName)); err != nil {
			return nil, err
		}
	}

	if err := mergeKDLFile(cfg, filepath.Join(projectRoot, projectConfigName)); err != nil {
		return nil, err
	}

	gitRules, err := GitignoreExclusionRules(projectRoot)
	if err != nil {
		return nil, err
	}
	cfg.ExclusionPatterns = append(cfg.ExclusionPatterns, gitRules...)
	cfg.ExclusionPatterns = append(cfg.ExclusionPatterns, BuildArtifactExclusionRules(projectRoot)...)

	applyEnvOverlay(cfg, filepath.Join(projectRoot, envFileName))

	if cfg.IndexPath == "" {
		cfg.IndexPath = filepath.Join(projectRoot, ".fsieve", "index.db")
	}

	return cfg, nil
}

func mergeKDLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("filesieve: reading config %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("filesieve: parsing config %s: %w", path, err)
	}

	var newRules []model.ExclusionRule
	now := time.Now()

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "index_path":
			if s, ok := firstStringArg(n); ok {
				cfg.IndexPath = s
			}
		case "thread_count":
			if v, ok := firstIntArg(n); ok {
				cfg.ThreadCount = v
			}
		case "max_file_size_for_content":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxFileSizeForContent = int64(v)
			} else if s, ok := firstStringArg(n); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.MaxFileSizeForContent = sz
				}
			}
		case "enable_content_search":
			if b, ok := firstBoolArg(n); ok {
				cfg.EnableContentSearch = b
			}
		case "enable_fuzzy_search":
			if b, ok := firstBoolArg(n); ok {
				cfg.EnableFuzzySearch = b
			}
		case "fuzzy_threshold":
			if v, ok := firstFloatArg(n); ok {
				cfg.FuzzyThreshold = v
			}
		case "cache_size":
			if v, ok := firstIntArg(n); ok {
				cfg.CacheSize = v
			}
		case "bloom_filter_capacity":
			if v, ok := firstIntArg(n); ok {
				cfg.BloomFilterCapacity = uint64(v)
			}
		case "bloom_filter_error_rate":
			if v, ok := firstFloatArg(n); ok {
				cfg.BloomFilterErrorRate = v
			}
		case "max_search_results":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxSearchResults = v
			}
		case "batch_size":
			if v, ok := firstIntArg(n); ok {
				cfg.BatchSize = v
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(n); ok {
				cfg.FollowSymlinks = b
			}
		case "index_hidden_files":
			if b, ok := firstBoolArg(n); ok {
				cfg.IndexHiddenFiles = b
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(n); ok {
				cfg.WatchDebounceMs = v
			}
		case "enable_access_tracking":
			if b, ok := firstBoolArg(n); ok {
				cfg.EnableAccessTracking = b
			}
		case "db_pool_size":
			if v, ok := firstIntArg(n); ok {
				cfg.DBPoolSize = v
			}
		case "exclusion_patterns":
			for _, p := range collectStringArgs(n) {
				newRules = append(newRules, model.ExclusionRule{Pattern: p, Kind: model.RuleGlob, CreatedAt: now})
			}
		}
	}

	cfg.ExclusionPatterns = append(cfg.ExclusionPatterns, newRules...)
	return nil
}

// applyEnvOverlay fills still-unset string/path fields from a .env
// file, never overriding a value already set by a KDL tier. Today the
// only field worth overlaying this way is IndexPath, via
// FSIEVE_INDEX_PATH — matching the teacher's "secrets/paths come from
// the environment, structure comes from KDL" split.
func applyEnvOverlay(cfg *Config, envPath string) {
	vars, err := godotenv.Read(envPath)
	if err != nil {
		return
	}
	if cfg.IndexPath == "" {
		if v, ok := vars["FSIEVE_INDEX_PATH"]; ok && v != "" {
			cfg.IndexPath = v
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	var n int64
	if _, err := fmt.Sscanf(strings.TrimSpace(numStr), "%d", &n); err != nil {
		return 0, err
	}
	return n * multiplier, nil
}
