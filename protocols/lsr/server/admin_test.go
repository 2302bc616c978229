package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/stretchr/testify/assert"
)

func TestHandleLSDBReturnsSnapshotAsJSON(t *testing.T) {
	s := newTestServer(nil)
	_, err := s.originate(context.Background())
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/lsdb", nil)
	rec := httptest.NewRecorder()
	s.handleLSDB(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var out map[string]*packet.LSA
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out, "172.20.1.3")
}

func TestHandleRoutesReturnsComputedRoutes(t *testing.T) {
	s := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/routes", nil)
	rec := httptest.NewRecorder()
	s.handleRoutes(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var out map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
}
