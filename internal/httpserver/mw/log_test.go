package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
)

func TestLog(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		wantExtra  bool
	}{
		{name: "production tiny", production: true, wantExtra: false},
		{name: "development common", production: false, wantExtra: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			h := Log(logger.FromZap(zap.New(core)), tt.production)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("hello"))
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))

			require.Equal(t, 1, logs.Len())
			fields := logs.All()[0].ContextMap()
			assert.Equal(t, "/api/bookmarks", fields["path"])
			assert.EqualValues(t, http.StatusOK, fields["status"])
			assert.EqualValues(t, 5, fields["bytes"])
			_, hasUA := fields["user_agent"]
			assert.Equal(t, tt.wantExtra, hasUA)
		})
	}
}
