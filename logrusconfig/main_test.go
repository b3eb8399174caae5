package logrusconfig

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevelFallback(t *testing.T) {
	if Level(logrus.WarnLevel) != logrus.WarnLevel {
		t.Error("Fallback level not used without flags")
	}

	l := 42
	loglevel = &l
	defer func() { loglevel = nil }()

	if Level(logrus.WarnLevel) != logrus.TraceLevel {
		t.Error("Out of range level not clamped")
	}
}

func TestPrefix(t *testing.T) {
	log := GetLogger("scc", logrus.DebugLevel)

	if log.Data["prefix"] != "scc" {
		t.Error("Prefix field missing", log.Data)
	}
	if log.Logger.GetLevel() != logrus.DebugLevel {
		t.Error("Wrong level", log.Logger.GetLevel())
	}
}
