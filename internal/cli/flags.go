package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	InputDir   string
	OutputDir  string
	Extension  string
	TaskList   string
	Delay      time.Duration
	Archive    bool
	DryRun     bool
	ListModels bool
	NoProgress bool

	// Translation flags
	Provider        string
	Model           string
	TargetLanguage  string
	MaxAttempts     int
	BaseDelay       time.Duration
	BreakerFailures int

	// History flags
	HistoryPath string
	NoHistory   bool
	Limit       int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		InputDir:        "input",
		OutputDir:       "output",
		Extension:       ".xml",
		Delay:           10 * time.Second,
		Provider:        "gemini",
		TargetLanguage:  "Traditional Chinese",
		MaxAttempts:     5,
		BaseDelay:       5 * time.Second,
		BreakerFailures: 3,
		Limit:           20,
	}
}
