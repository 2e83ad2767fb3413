package logging

import (
	"log/slog"
	"testing"
)

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	a := GetLogger("statetest")
	b := GetLogger("statetest")
	if a != b {
		t.Error("expected the same logger for repeated GetLogger calls")
	}
}

func TestInitializeAppliesModuleLevels(t *testing.T) {
	GetLogger("busdebug")
	Initialize(Config{
		Level:  "warn",
		Format: "text",
		Modules: map[string]string{
			"busdebug": "debug",
		},
	})

	mutex.RLock()
	defer mutex.RUnlock()
	if got := moduleLevelVars["busdebug"].Level(); got != slog.LevelDebug {
		t.Errorf("module level = %v, want debug", got)
	}
	if got := globalLevelVar.Level(); got != slog.LevelWarn {
		t.Errorf("global level = %v, want warn", got)
	}
}

func TestReconfigureChangesLevelsInPlace(t *testing.T) {
	logger := GetLogger("reconf")
	Initialize(Config{Level: "info", Format: "text"})

	Reconfigure(Config{
		Level:   "error",
		Modules: map[string]string{"reconf": "debug"},
	})

	mutex.RLock()
	levelVar := moduleLevelVars["reconf"]
	mutex.RUnlock()
	if got := levelVar.Level(); got != slog.LevelDebug {
		t.Errorf("module level = %v, want debug", got)
	}
	// The existing logger handle picks up the new level.
	if !logger.Enabled(nil, slog.LevelDebug) {
		t.Error("expected the logger to be enabled at debug after reconfigure")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", 0, false},
	}
	for _, tc := range tests {
		got := parseLevel(tc.in)
		if tc.ok && (got == nil || *got != tc.want) {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if !tc.ok && got != nil {
			t.Errorf("parseLevel(%q) = %v, want nil", tc.in, got)
		}
	}
}
