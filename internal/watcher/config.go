package watcher

import "time"

type Config struct {
	DebounceWindow time.Duration `json:"debounce_window"`
	MaxBatchSize   int           `json:"max_batch_size"`
	// IncludePatterns select outline files under a watched root.
	IncludePatterns []string `json:"include_patterns"`
	IgnorePatterns  []string `json:"ignore_patterns"`
	WatchHidden     bool     `json:"watch_hidden"`
}

func DefaultConfig() Config {
	return Config{
		DebounceWindow:  300 * time.Millisecond,
		MaxBatchSize:    100,
		IncludePatterns: []string{"**/*.md", "**/*.markdown", "**/*.txt"},
		IgnorePatterns: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/.idea/**",
			"**/dist/**",
			"**/build/**",
			"**/vendor/**",
			"**/*.tmp",
			"**/*~",
		},
		WatchHidden: false,
	}
}
