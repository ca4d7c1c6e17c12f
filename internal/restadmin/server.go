// Package restadmin is the thin REST admin dispatcher spec §6 describes:
// a gin router mapping each admin verb onto a trunking.Controller /
// afftable.Table method call, mirroring
// original_source/network/rest/RequestDispatcher.h's per-path,
// per-method handler table reshaped into gin's (c *gin.Context) handler
// signature. Business logic stays in C7/C8; handlers here only decode
// the request, call the target, and encode the result.
package restadmin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dvmgo/trunkcore/internal/afftable"
	"github.com/dvmgo/trunkcore/internal/database"
	"github.com/dvmgo/trunkcore/internal/trunking"
)

// ProtocolTarget bundles one protocol's controller and affiliation
// table, the unit the REST admin verbs in spec §6 ultimately act on.
type ProtocolTarget struct {
	Controller *trunking.Controller
	Grants     *afftable.Table
}

// Server is the REST admin HTTP surface. Version is reported verbatim
// by GET /version; Targets is keyed by protocol name ("DMR", "P25",
// "NXDN"); Users/Rules back the RID whitelist/blacklist and TG rule
// CRUD endpoints.
type Server struct {
	Version   string
	Targets   map[string]*ProtocolTarget
	Users     *database.RadioUserRepository
	Rules     *database.TGRuleRepository
	JWTSecret string

	engine *gin.Engine
}

// NewServer builds the router. Call Handler to get the http.Handler to
// pass to an *http.Server.
func NewServer(version, jwtSecret string, targets map[string]*ProtocolTarget, users *database.RadioUserRepository, rules *database.TGRuleRepository) *Server {
	s := &Server{Version: version, Targets: targets, Users: users, Rules: rules, JWTSecret: jwtSecret}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/version", s.handleVersion)

	admin := s.engine.Group("/")
	if s.JWTSecret != "" {
		admin.Use(s.authMiddleware)
	}

	admin.GET("/status", s.handleStatus)
	admin.GET("/voice-channels", s.handleVoiceChannels)
	admin.GET("/affiliations", s.handleAffiliations)
	admin.GET("/grants", s.handleGrants)

	admin.POST("/mode", s.handleSetMode)
	admin.POST("/permit-tg", s.handlePermitTG)
	admin.POST("/grant-tg", s.handleGrantTG)
	admin.POST("/release-grants", s.handleReleaseGrants)
	admin.POST("/release-affs", s.handleReleaseAffs)
	admin.POST("/cc-enable", s.handleCCEnable)
	admin.POST("/cc-broadcast", s.handleCCBroadcast)
	admin.POST("/dmr-payload-activate", s.handleDMRPayloadActivate)

	admin.GET("/rid", s.handleListRIDs)
	admin.POST("/rid", s.handleUpsertRID)
	admin.GET("/tg", s.handleListTGs)
	admin.POST("/tg", s.handleUpsertTG)
}

// authMiddleware checks a bearer JWT signed with s.JWTSecret, matching
// the REDESIGN FLAGS' "borrowed-reference handler" replacement: a
// single shared middleware instead of per-handler auth checks.
func (s *Server) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	_, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Next()
}

func (s *Server) target(c *gin.Context, protocol string) (*ProtocolTarget, bool) {
	t, ok := s.Targets[strings.ToUpper(protocol)]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown protocol"})
		return nil, false
	}
	return t, true
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.Version})
}

type protocolStatus struct {
	Protocol    string `json:"protocol"`
	CCEnabled   bool   `json:"cc_enabled"`
	CCBroadcast bool   `json:"cc_broadcast"`
	Ticks       int    `json:"ticks"`
	ChannelsTot int    `json:"channels_total"`
	ChannelsFree int   `json:"channels_free"`
	Grants       map[uint32]afftable.GrantInfo `json:"grants"`
	Affiliations map[uint32]uint32             `json:"affiliations"`
}

// handleStatus reports version and per-protocol channel state, current
// grants, and affiliations per spec §6's GET surface.
func (s *Server) handleStatus(c *gin.Context) {
	statuses := make([]protocolStatus, 0, len(s.Targets))
	for name, t := range s.Targets {
		total, free := 0, 0
		var grants map[uint32]afftable.GrantInfo
		var affs map[uint32]uint32
		if t.Grants != nil {
			total, free = t.Grants.PoolSize()
			grants = t.Grants.Grants()
			affs = t.Grants.Affiliations()
		}
		statuses = append(statuses, protocolStatus{
			Protocol:     name,
			CCEnabled:    t.Controller.CCEnabled(),
			CCBroadcast:  t.Controller.CCBroadcasting(),
			Ticks:        t.Controller.Ticks(),
			ChannelsTot:  total,
			ChannelsFree: free,
			Grants:       grants,
			Affiliations: affs,
		})
	}
	c.JSON(http.StatusOK, gin.H{"version": s.Version, "protocols": statuses})
}

func (s *Server) handleVoiceChannels(c *gin.Context) {
	protocol := c.Query("protocol")
	t, ok := s.target(c, protocol)
	if !ok {
		return
	}
	total, free := t.Grants.PoolSize()
	c.JSON(http.StatusOK, gin.H{"total": total, "free": free, "grants": t.Grants.Grants()})
}

func (s *Server) handleAffiliations(c *gin.Context) {
	t, ok := s.target(c, c.Query("protocol"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"affiliations": t.Grants.Affiliations()})
}

func (s *Server) handleGrants(c *gin.Context) {
	t, ok := s.target(c, c.Query("protocol"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"grants": t.Grants.Grants()})
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // idle, lockout, dmr, p25, nxdn
}

// handleSetMode implements spec §6's set-mode {idle, lockout, dmr, p25,
// nxdn}: "dmr"/"p25"/"nxdn" enables that protocol's control channel and
// disables the others; "idle" and "lockout" disable every protocol
// (lockout additionally leaves broadcast paused once re-enabled, so a
// subsequent cc-enable alone doesn't silently resume beaconing).
func (s *Server) handleSetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode := strings.ToLower(req.Mode)
	switch mode {
	case "idle", "lockout":
		for _, t := range s.Targets {
			t.Controller.SetCCEnabled(false)
			if mode == "lockout" {
				t.Controller.SetCCBroadcast(false)
			}
		}
	case "dmr", "p25", "nxdn":
		want := strings.ToUpper(mode)
		for name, t := range s.Targets {
			t.Controller.SetCCEnabled(name == want)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": mode})
}

type tgRequest struct {
	Protocol string `json:"protocol" binding:"required"`
	DstID    uint32 `json:"dst_id" binding:"required"`
}

func (s *Server) handlePermitTG(c *gin.Context) {
	var req tgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.Rules == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rule store unavailable"})
		return
	}
	if err := s.Rules.Upsert(&database.TGRule{DstID: req.DstID, Protocol: strings.ToUpper(req.Protocol), Allowed: true}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"permitted": req.DstID})
}

type grantTGRequest struct {
	Protocol  string `json:"protocol" binding:"required"`
	DstID     uint32 `json:"dst_id" binding:"required"`
	SrcID     uint32 `json:"src_id" binding:"required"`
	TimeoutMS int    `json:"timeout_ms"`
	Net       bool   `json:"net"`
	Slot      uint8  `json:"slot"`
}

func (s *Server) handleGrantTG(c *gin.Context) {
	var req grantTGRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := s.target(c, req.Protocol)
	if !ok {
		return
	}
	timeout := req.TimeoutMS
	if timeout <= 0 {
		timeout = 15000
	}
	granted := t.Grants.GrantCh(req.DstID, req.SrcID, timeout, req.Net, req.Slot)
	if !granted {
		c.JSON(http.StatusConflict, gin.H{"error": "no free channel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"granted": req.DstID})
}

type releaseRequest struct {
	Protocol string `json:"protocol" binding:"required"`
	DstID    uint32 `json:"dst_id" binding:"required"`
	All      bool   `json:"all"`
}

func (s *Server) handleReleaseGrants(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := s.target(c, req.Protocol)
	if !ok {
		return
	}
	released := t.Grants.ReleaseGrant(req.DstID, req.All)
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func (s *Server) handleReleaseAffs(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := s.target(c, req.Protocol)
	if !ok {
		return
	}
	cleared := t.Grants.ClearGroupAff(req.DstID, true)
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

type ccToggleRequest struct {
	Protocol string `json:"protocol" binding:"required"`
	Enabled  bool   `json:"enabled"`
}

func (s *Server) handleCCEnable(c *gin.Context) {
	var req ccToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := s.target(c, req.Protocol)
	if !ok {
		return
	}
	t.Controller.SetCCEnabled(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"cc_enabled": req.Enabled})
}

func (s *Server) handleCCBroadcast(c *gin.Context) {
	var req ccToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, ok := s.target(c, req.Protocol)
	if !ok {
		return
	}
	t.Controller.SetCCBroadcast(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"cc_broadcast": req.Enabled})
}

// handleDMRPayloadActivate answers spec §6's dmr-payload-activate verb
// with 501 Not Implemented: the core carries no DMR data payload
// transport (only voice/control), and the request is neither parsed nor
// recorded.
func (s *Server) handleDMRPayloadActivate(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "dmr data payload transport not implemented"})
}

type ridRequest struct {
	RadioID  uint32 `json:"radio_id" binding:"required"`
	Protocol string `json:"protocol" binding:"required"`
	Callsign string `json:"callsign"`
	Allowed  bool   `json:"allowed"`
}

// handleListRIDs and handleUpsertRID implement spec §6's
// rid-whitelist/blacklist CRUD as a single upsert surface: Allowed=false
// blacklists an RID, Allowed=true (the default for an unlisted RID
// anyway) removes any prior blacklist entry's effect.
func (s *Server) handleListRIDs(c *gin.Context) {
	if s.Users == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "user store unavailable"})
		return
	}
	users, err := s.Users.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleUpsertRID(c *gin.Context) {
	var req ridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.Users == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "user store unavailable"})
		return
	}
	user := &database.RadioUser{RadioID: req.RadioID, Protocol: strings.ToUpper(req.Protocol), Callsign: req.Callsign, Allowed: req.Allowed}
	if err := s.Users.Upsert(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserted": req.RadioID})
}

func (s *Server) handleListTGs(c *gin.Context) {
	if s.Rules == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rule store unavailable"})
		return
	}
	rules, err := s.Rules.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

type tgRuleRequest struct {
	DstID              uint32 `json:"dst_id" binding:"required"`
	Protocol           string `json:"protocol" binding:"required"`
	Name               string `json:"name"`
	Allowed            bool   `json:"allowed"`
	RequireAffiliation bool   `json:"require_affiliation"`
}

func (s *Server) handleUpsertTG(c *gin.Context) {
	var req tgRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.Rules == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rule store unavailable"})
		return
	}
	rule := &database.TGRule{
		DstID:              req.DstID,
		Protocol:           strings.ToUpper(req.Protocol),
		Name:               req.Name,
		Allowed:            req.Allowed,
		RequireAffiliation: req.RequireAffiliation,
	}
	if err := s.Rules.Upsert(rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserted": req.DstID})
}
