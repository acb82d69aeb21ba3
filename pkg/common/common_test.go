package common

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestSetDebugLevel(t *testing.T) {
	// Test cases
	tests := []struct {
		name     string
		dbgLvl   DbgLevel
		expected DbgLevel
	}{
		{
			name:     "Test case 1",
			dbgLvl:   DbgLvlDebug,
			expected: DbgLvlDebug,
		},
		{
			name:     "Test case 2",
			dbgLvl:   DbgLvlInfo,
			expected: DbgLvlInfo,
		},
		{
			name:     "Test case 3",
			dbgLvl:   DbgLvlError,
			expected: DbgLvlError,
		},
		{
			name:     "Test case 4",
			dbgLvl:   DbgLvlNone,
			expected: DbgLvlNone,
		},
	}

	// Run tests
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			SetDebugLevel(test.dbgLvl)
			if debugLevel != test.expected {
				t.Errorf("Expected debug level %v, but got %v", test.expected, debugLevel)
			}
		})
	}
}

func TestGetDebugLevel(t *testing.T) {
	expected := debugLevel
	result := GetDebugLevel()
	if result != expected {
		t.Errorf("Expected debug level %v, but got %v", expected, result)
	}
}

func TestDebugMsg(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	tests := []struct {
		name      string
		dbgLvl    DbgLevel
		setLvl    DbgLevel
		msg       string
		shouldLog bool
	}{
		{
			name:      "Info is always logged",
			dbgLvl:    DbgLvlInfo,
			setLvl:    DbgLvlNone,
			msg:       "info message",
			shouldLog: true,
		},
		{
			name:      "Error is always logged",
			dbgLvl:    DbgLvlError,
			setLvl:    DbgLvlNone,
			msg:       "error message",
			shouldLog: true,
		},
		{
			name:      "Debug suppressed below debug level",
			dbgLvl:    DbgLvlDebug,
			setLvl:    DbgLvlNone,
			msg:       "hidden debug message",
			shouldLog: false,
		},
		{
			name:      "Debug logged at debug level",
			dbgLvl:    DbgLvlDebug,
			setLvl:    DbgLvlDebug,
			msg:       "visible debug message",
			shouldLog: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf.Reset()
			SetDebugLevel(test.setLvl)
			DebugMsg(test.dbgLvl, test.msg)
			logged := strings.Contains(buf.String(), test.msg)
			if logged != test.shouldLog {
				t.Errorf("DebugMsg() logged = %v, want %v (output %q)", logged, test.shouldLog, buf.String())
			}
		})
	}
}
