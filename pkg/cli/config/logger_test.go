package config_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/towebp/pkg/cli/config"
	"github.com/m-mizutani/towebp/pkg/domain/model"
)

func TestLogger_Configure_Levels(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
		wantErr bool
	}{
		{level: "debug", visible: []string{"dbg", "inf", "wrn", "err"}},
		{level: "Info", visible: []string{"inf", "wrn", "err"}, hidden: []string{"dbg"}},
		{level: "WARN", visible: []string{"wrn", "err"}, hidden: []string{"dbg", "inf"}},
		{level: "error", visible: []string{"err"}, hidden: []string{"dbg", "inf", "wrn"}},
		{level: "verbose", wantErr: true},
		{level: "warning", wantErr: true},
		{level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Logger{Level: tt.level, JSON: true}
			cfg.SetWriter(&buf)

			logger, err := cfg.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()

			logger.Debug("msg-dbg")
			logger.Info("msg-inf")
			logger.Warn("msg-wrn")
			logger.Error("msg-err")

			for _, v := range tt.visible {
				gt.True(t, strings.Contains(buf.String(), "msg-"+v))
			}
			for _, h := range tt.hidden {
				gt.False(t, strings.Contains(buf.String(), "msg-"+h))
			}
		})
	}
}

func TestLogger_Configure_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Logger{Level: "info"}
	cfg.SetWriter(&buf)

	logger, err := cfg.Configure()
	gt.NoError(t, err).Required()

	logger.Info("server started", "addr", "localhost:8080")
	gt.True(t, strings.Contains(buf.String(), "server started"))
	gt.True(t, strings.Contains(buf.String(), "localhost:8080"))
}

func TestLogger_Configure_RedactsPayload(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Logger{Level: "info", JSON: true}
	cfg.SetWriter(&buf)

	logger, err := cfg.Configure()
	gt.NoError(t, err).Required()

	img := model.NewConvertedImage("cat.png", []byte("super secret image bytes"))
	logger.Info("converted", "image", img)

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()

	out := buf.String()
	gt.True(t, strings.Contains(out, `"cat"`))
	gt.False(t, strings.Contains(out, img.Data))
}

func TestLogger_Flags(t *testing.T) {
	cfg := &config.Logger{}

	names := map[string]bool{}
	for _, flag := range cfg.Flags() {
		for _, name := range flag.Names() {
			names[name] = true
		}
	}

	gt.True(t, names["log-level"])
	gt.True(t, names["log-json"])
}
