package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetLogger(t *testing.T) {
	log := GetLogger(logrus.WarnLevel)
	if log.Logger.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", log.Logger.GetLevel())
	}

	level := int(logrus.TraceLevel)
	loglevel = &level
	defer func() { loglevel = nil }()

	log = GetLogger(logrus.WarnLevel)
	if log.Logger.GetLevel() != logrus.TraceLevel {
		t.Fatalf("flag should override level, got %s", log.Logger.GetLevel())
	}
}

func TestWithPrefix(t *testing.T) {
	log := WithPrefix(GetLogger(logrus.InfoLevel), "tfluna")
	if log.Data["prefix"] != "tfluna" {
		t.Fatalf("expected prefix field, got %v", log.Data)
	}
}
