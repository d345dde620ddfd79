package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/session"
)

func TestRollbarLogger(t *testing.T) {
	conf := core.NewTestConfig()

	tests := []struct {
		name     string
		debug    bool
		log      func(l *RollbarLogger)
		contains []string
		excludes []string
	}{
		{
			name:     "error with extras and operator",
			log:      func(l *RollbarLogger) { l.Error("saving attendance", errors.New("boom"), &session.User{ID: "u-1", Email: "a@test.test"}) },
			contains: []string{"ERROR: saving attendance", "boom"},
			excludes: []string{"a@test.test"},
		},
		{
			name:     "debug disabled",
			log:      func(l *RollbarLogger) { l.Debug("stale roster") },
			excludes: []string{"stale roster"},
		},
		{
			name:     "debug enabled",
			debug:    true,
			log:      func(l *RollbarLogger) { l.Debug("stale roster", map[string]interface{}{"group_id": 2}) },
			contains: []string{"DEBUG: stale roster", "group_id:2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			conf.Debug = tt.debug
			l := NewRollbarLogger(log.New(&buf, "API : ", 0), conf)

			tt.log(l)
			out := buf.String()
			for _, s := range tt.contains {
				assert.True(t, strings.Contains(out, s), "%q not in %q", s, out)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(out, s), "%q in %q", s, out)
			}
		})
	}
}
