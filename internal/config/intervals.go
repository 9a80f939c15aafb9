package config

import "time"

// Worker intervals
const (
	// StateBackupInterval defines how often changed warning levels are saved to Redis
	StateBackupInterval = 10 * time.Second

	// MemoryReportInterval defines how often runtime memory stats are logged
	MemoryReportInterval = 30 * time.Second

	// ShutdownFlushTimeout bounds the final warning state flush on shutdown
	ShutdownFlushTimeout = 5 * time.Second
)
