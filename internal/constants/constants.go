package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// RegulationInnings is the length of a standard sandlot game.
	RegulationInnings = 7

	// ExtraInningCeiling is the most innings a game can be extended to.
	ExtraInningCeiling = 10

	OutsPerHalfInning = 3

	// MaxRBI caps runs batted in on a single plate appearance
	// (bases loaded plus the batter).
	MaxRBI = 4

	LineupSize = 9
)

const (
	// ProposalTTL bounds how long a pending double-play disambiguation
	// proposal is held before it is discarded.
	ProposalTTL = 10 * time.Minute
)
