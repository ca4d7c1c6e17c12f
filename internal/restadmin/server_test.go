package restadmin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dvmgo/trunkcore/internal/afftable"
	"github.com/dvmgo/trunkcore/internal/database"
	"github.com/dvmgo/trunkcore/internal/trunking"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestServerWithSecret(t *testing.T, jwtSecret string) (*Server, *database.RadioUserRepository, *database.TGRuleRepository) {
	t.Helper()
	db, err := database.NewDB(database.Config{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := database.NewRadioUserRepository(db.GetDB())
	rules := database.NewTGRuleRepository(db.GetDB())

	grants := afftable.New(1000, []uint32{1, 2}, nil)
	ctrl := trunking.NewController("P25", time.Millisecond, nil)

	srv := NewServer("test-1.0", jwtSecret, map[string]*ProtocolTarget{
		"P25": {Controller: ctrl, Grants: grants},
	}, users, rules)
	return srv, users, rules
}

func newTestServer(t *testing.T) (*Server, *database.RadioUserRepository, *database.TGRuleRepository) {
	t.Helper()
	return newTestServerWithSecret(t, "")
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestVersionEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "test-1.0")
}

func TestGrantAndReleaseTG(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/grant-tg", grantTGRequest{Protocol: "P25", DstID: 50, SrcID: 1001})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/grants?protocol=P25", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "50")

	rec = doJSON(t, srv, http.MethodPost, "/release-grants", releaseRequest{Protocol: "P25", DstID: 50})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSetModeEnablesOnlyChosenProtocol(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/mode", modeRequest{Mode: "lockout"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, srv.Targets["P25"].Controller.CCEnabled())
	require.False(t, srv.Targets["P25"].Controller.CCBroadcasting())

	rec = doJSON(t, srv, http.MethodPost, "/mode", modeRequest{Mode: "p25"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, srv.Targets["P25"].Controller.CCEnabled())
}

func TestUpsertAndListRID(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/rid", ridRequest{RadioID: 100, Protocol: "DMR", Callsign: "KJ4ABC", Allowed: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/rid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "KJ4ABC")
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServerWithSecret(t, "sekrit")

	rec := doJSON(t, srv, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	srv, _, _ := newTestServerWithSecret(t, "sekrit")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	signed, err := token.SignedString([]byte("sekrit"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
